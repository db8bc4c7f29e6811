package domain

import "time"

// TimestampLayout renders ISO-8601 UTC timestamps with a fixed width so that
// stored values sort lexicographically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// AccountStatus represents lifecycle states for a customer account. The
// schema does not enforce the set.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusDisabled AccountStatus = "disabled"
)

// Account is a customer record.
type Account struct {
	Identifier            int64  `json:"identifier"`
	FullName              string `json:"full_name"`
	ContactEmail          string `json:"contact_email"`
	ContactPhone          string `json:"contact_phone"`
	AccountStatus         string `json:"account_status"`
	CreationTimestamp     string `json:"creation_timestamp"`
	LastModifiedTimestamp string `json:"last_modified_timestamp"`
}

// AccountField names a column that update_customer may change.
type AccountField string

const (
	AccountFieldFullName     AccountField = "full_name"
	AccountFieldContactEmail AccountField = "contact_email"
	AccountFieldContactPhone AccountField = "contact_phone"
	AccountFieldStatus       AccountField = "account_status"
)

// UpdatableAccountFields lists the fields update_customer applies, in the order
// they are written.
var UpdatableAccountFields = []AccountField{
	AccountFieldFullName,
	AccountFieldContactEmail,
	AccountFieldContactPhone,
	AccountFieldStatus,
}

// AccountUpdate is a partial set of new field values.
type AccountUpdate map[AccountField]string
