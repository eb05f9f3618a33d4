package autotask

// Ticket status values used by the close path.
const (
	TicketStatusNew = 1
	// TicketStatusComplete is the terminal status; tickets already Complete
	// are never touched again.
	TicketStatusComplete = 5
	// TicketStatusResolvedPending is "Resolved, pending customer confirmation",
	// used when the ticket has an assigned resource.
	TicketStatusResolvedPending = 13
)

// TicketPriorityHigh is the priority assigned to outage tickets.
const TicketPriorityHigh = 1

const (
	noteTypeTaskDetail = 1
	notePublishAll     = 1
)

type Company struct {
	ID            int64  `json:"id"`
	CompanyName   string `json:"companyName"`
	CompanyNumber string `json:"companyNumber"`
	IsActive      bool   `json:"isActive"`
}

type CompanyLocation struct {
	ID        int64 `json:"id"`
	IsActive  bool  `json:"isActive"`
	IsPrimary bool  `json:"isPrimary"`
}

type Contract struct {
	ID int64 `json:"id"`
}

// ConfigurationItem is Autotask's record of a monitored device/asset.
type ConfigurationItem struct {
	ID                int64  `json:"id"`
	CompanyID         int64  `json:"companyID"`
	IsActive          bool   `json:"isActive"`
	ReferenceTitle    string `json:"referenceTitle"`
	ExternalIPAddress string `json:"rmmDeviceAuditExternalIPAddress"`
}

type Ticket struct {
	ID                  int64  `json:"id"`
	CompanyID           int64  `json:"companyID"`
	CompanyLocationID   int64  `json:"companyLocationID"`
	CreateDate          string `json:"createDate"`
	Status              int    `json:"status"`
	TicketNumber        string `json:"ticketNumber"`
	Title               string `json:"title"`
	ConfigurationItemID *int64 `json:"configurationItemID"`
	AssignedResourceID  *int64 `json:"assignedResourceID"`
}

// NewTicket is the create payload. Field names follow the REST API's PascalCase
// write schema; nullable ids marshal as JSON null when unset.
type NewTicket struct {
	CompanyID               int64  `json:"CompanyID"`
	CompanyLocationID       int64  `json:"CompanyLocationID"`
	Priority                int    `json:"Priority"`
	Status                  int    `json:"Status"`
	QueueID                 int    `json:"QueueID"`
	IssueType               int    `json:"IssueType"`
	SubIssueType            int    `json:"SubIssueType"`
	ServiceLevelAgreementID int    `json:"ServiceLevelAgreementID"`
	ContractID              *int64 `json:"ContractID"`
	ConfigurationItemID     *int64 `json:"ConfigurationItemID"`
	Title                   string `json:"Title"`
	Description             string `json:"Description"`
}

type TicketNote struct {
	TicketID    int64  `json:"TicketID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	NoteType    int    `json:"NoteType"`
	Publish     int    `json:"Publish"`
}

// NewClosingNote builds the self-healing note posted before a ticket is closed.
func NewClosingNote(ticketID int64, downtime string) *TicketNote {
	return &TicketNote{
		TicketID:    ticketID,
		Title:       "Self-Healing Update",
		Description: "[Self-Healing] The device is now back up. This ticket has been auto-closed. Total downtime: " + downtime,
		NoteType:    noteTypeTaskDetail,
		Publish:     notePublishAll,
	}
}
