package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"wqsolutions/internal/database"
	"wqsolutions/internal/pdf"
)

const inquiryReportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; font-size: 10pt; margin: 24px; }
        h1 { font-size: 16pt; }
        .meta { color: #555; margin-bottom: 16px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; vertical-align: top; }
        th { background: #f2f2f2; }
        tr.unread td { font-weight: bold; }
    </style>
</head>
<body>
    <h1>Inquiry Report</h1>
    <div class="meta">Generated {{.GeneratedAt}} &middot; {{.Count}} inquiries</div>
    <table>
        <tr>
            <th>ID</th><th>Name</th><th>Email</th><th>Phone</th>
            <th>Subject</th><th>Service</th><th>Message</th><th>Received</th>
        </tr>
        {{range .Inquiries}}
        <tr{{if not .Read}} class="unread"{{end}}>
            <td>{{.ID}}</td>
            <td>{{.Name}}</td>
            <td>{{.Email}}</td>
            <td>{{.Phone}}</td>
            <td>{{.Subject}}</td>
            <td>{{.ServiceInterest}}</td>
            <td>{{.Message}}</td>
            <td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>`

var inquiryReport = template.Must(template.New("inquiry-report").Parse(inquiryReportTemplate))

// InquiriesReportHTML renders the printable inquiry report.
func InquiriesReportHTML(inquiries []database.Inquiry) (string, error) {
	var sb strings.Builder
	err := inquiryReport.Execute(&sb, map[string]any{
		"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
		"Count":       len(inquiries),
		"Inquiries":   inquiries,
	})
	if err != nil {
		return "", fmt.Errorf("render inquiry report: %w", err)
	}
	return sb.String(), nil
}

// InquiriesPDF renders the report and prints it to PDF in a headless browser.
func InquiriesPDF(inquiries []database.Inquiry) ([]byte, error) {
	html, err := InquiriesReportHTML(inquiries)
	if err != nil {
		return nil, err
	}
	return pdf.GeneratePDFFromHTML(html)
}
