package domain

const (
	NotificationAssignmentsCreated = "guardias_creadas"
	NotificationDayReplaced        = "dia_reemplazado"
	NotificationRangeDeleted       = "guardias_eliminadas"
)

// NotificationMessage is what the API publishes to the notification queue
// after a successful roster mutation. The WhatsApp pipeline and the mail
// notifier both consume this shape.
type NotificationMessage struct {
	Type    string `json:"type"`
	GroupID int64  `json:"idGrupo"`
	To      string `json:"to,omitempty"` // group contact address, empty when unknown
	Fecha   string `json:"fecha,omitempty"`
	Desde   string `json:"desde,omitempty"`
	Hasta   string `json:"hasta,omitempty"`
	Count   int64  `json:"cantidad"`
}
