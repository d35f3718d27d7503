package cli

const jobTemplate = `
=== {{.Title}} ===

Company:  {{.Company}}
Location: {{.Location}}
Type:     {{.Type}}
{{- if .Salary }}
Salary:   {{.Salary}}
{{- end}}
Posted:   {{.PostedDate}}
{{- if .Description }}

Description:
{{.Description}}
{{- end}}
{{- if .Requirements }}

Requirements:
{{.Requirements}}
{{- end}}
{{- if or .ContactEmail .ContactPhone }}

Contact:
{{- if .ContactEmail }}
  Email: {{.ContactEmail}}
{{- end}}
{{- if .ContactPhone }}
  Phone: {{.ContactPhone}}
{{- end}}
{{- end}}
`

const roomTemplate = `
=== {{.Title}} ===

Rent:      {{.Rent}}
Location:  {{.Location}}
Type:      {{.Type}}
{{- if .Size }}
Size:      {{.Size}}
{{- end}}
{{- if .Bedrooms }}
Bedrooms:  {{.Bedrooms}}
{{- end}}
{{- if .Bathrooms }}
Bathrooms: {{.Bathrooms}}
{{- end}}
Available: {{.Available}}
{{- if .Description }}

Description:
{{.Description}}
{{- end}}
{{- if .Amenities }}

Amenities:
{{.Amenities}}
{{- end}}
{{- if or .ContactName .ContactEmail .ContactPhone }}

Contact:
{{- if .ContactName }}
  Name:  {{.ContactName}}
{{- end}}
{{- if .ContactEmail }}
  Email: {{.ContactEmail}}
{{- end}}
{{- if .ContactPhone }}
  Phone: {{.ContactPhone}}
{{- end}}
{{- end}}
`

const communityTemplate = `
=== {{.Community.Name}} ===

{{.Community.Members}} members | {{.Community.Category}}{{if .Community.IsPrivate}} | Private{{end}}
{{- if .Community.Location }}
Location: {{.Community.Location}}
{{- end}}

About:
{{.Community.Description}}
{{- if .Community.Rules }}

Rules:
{{.Community.Rules}}
{{- end}}
{{- if .Members }}

Members:
{{- range .Members }}
  - {{.Name}}{{if .Position}} ({{.Position}}){{end}}
{{- end}}
{{- end}}
{{- if .Events }}

Upcoming events:
{{- range .Events }}
  [{{.ID}}] {{.Title}}
      {{.Date}} | {{.Location}}
{{- end}}
{{- end}}
`

const eventTemplate = `
=== {{.Title}} ===

When:  {{.Date}}
Where: {{.Location}}

{{.Description}}

Run 'globalconnect event-register {{.ID}}' to register.
`

const newsTemplate = `
=== {{.Title}} ===

{{.Category}} | {{.Location}} | {{.PostedDate}}
by {{.Author}}

{{.Content}}
`
