package ghlevents

const (
	TopicName                 = "ghl"
	connectionEstablishedName = TopicName + ".connection.established"
	connectionClosedName      = TopicName + ".connection.closed"
	contactExportedName       = TopicName + ".contact.exported"
)

type ConnectionEstablished struct {
	CompanyID     string `json:"companyId"`
	UserID        string `json:"userId"`
	StorageMethod string `json:"storageMethod"`
}

func (e ConnectionEstablished) GetEventTypeName() string {
	return connectionEstablishedName
}

func (e ConnectionEstablished) GetAggregateName() string {
	return e.CompanyID
}

type ConnectionClosed struct {
	CompanyID string `json:"companyId"`
}

func (e ConnectionClosed) GetEventTypeName() string {
	return connectionClosedName
}

func (e ConnectionClosed) GetAggregateName() string {
	return e.CompanyID
}

type ContactExported struct {
	LocationID string `json:"locationId"`
	ContactID  string `json:"contactId"`
}

func (e ContactExported) GetEventTypeName() string {
	return contactExportedName
}

func (e ContactExported) GetAggregateName() string {
	return e.LocationID
}
