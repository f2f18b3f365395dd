package booking

import (
	"strconv"
	"time"

	"github.com/example/skiphire/internal/core/schedule"
)

// FieldChange describes one field that differs between two records.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// Diff lists the fields that changed from before to after, in a fixed order.
func Diff(before, after Record) []FieldChange {
	var changes []FieldChange
	add := func(field, o, n string) {
		if o != n {
			changes = append(changes, FieldChange{Field: field, OldValue: o, NewValue: n})
		}
	}

	add("skip", skipID(before), skipID(after))
	add("placement", string(before.Placement), string(after.Placement))
	add("delivery_date", date(before.DeliveryDate), date(after.DeliveryDate))
	add("collection_date", date(before.CollectionDate), date(after.CollectionDate))
	add("delivery_address", before.DeliveryAddress, after.DeliveryAddress)
	add("photo_uploaded", strconv.FormatBool(before.PhotoUploaded), strconv.FormatBool(after.PhotoUploaded))
	add("special_instructions", before.SpecialInstructions, after.SpecialInstructions)
	add("name", before.Customer.Name, after.Customer.Name)
	add("email", before.Customer.Email, after.Customer.Email)
	add("phone", before.Customer.Phone, after.Customer.Phone)

	return changes
}

func skipID(r Record) string {
	if r.Skip == nil {
		return ""
	}
	return strconv.Itoa(r.Skip.ID)
}

func date(d *time.Time) string {
	if d == nil {
		return ""
	}
	return schedule.FormatDate(*d)
}

// Redacted replaces customer contact details in audit entries.
const Redacted = "[redacted]"

// Redact hides the value of a contact field but keeps whether it was set.
// Other fields pass through unchanged.
func Redact(field, value string) string {
	switch field {
	case "name", "email", "phone":
		if value != "" {
			return Redacted
		}
	}
	return value
}
