package mailer

import "html/template"

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>¡Tu cita está confirmada!</h2>
<p>Hola {{.ClientName}},</p>
<p>Reservaste <strong>{{.ServiceName}}</strong> con {{.EmployeeName}} en {{.BusinessName}}.</p>
<ul>
  <li>Fecha: {{.Date}}</li>
  <li>Hora: {{.Time}}</li>
  {{if .Price}}<li>Precio: {{.Price}}</li>{{end}}
</ul>`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`<h2>Tu cita fue cancelada</h2>
<p>Hola {{.ClientName}},</p>
<p>La cita de <strong>{{.ServiceName}}</strong> con {{.EmployeeName}} del {{.Date}} a las {{.Time}} fue cancelada.</p>
<p>Puedes reservar un nuevo horario cuando quieras.</p>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<h2>Recordatorio</h2>
<p>Hola {{.ClientName}},</p>
<p>Te esperamos mañana {{.Date}} a las {{.Time}} para <strong>{{.ServiceName}}</strong> con {{.EmployeeName}} en {{.BusinessName}}.</p>`))
