package domain

// ContactInformation is the contact block of a Mirakl shop profile.
// All fields are optional on the Mirakl side; absent values are empty.
type ContactInformation struct {
	Email   string
	Phone   string
	WebSite string
}

// CustomField is an arbitrary key/value attached to a Mirakl shop.
type CustomField struct {
	Code  string
	Value string
}

// Shop is a Mirakl shop profile as returned by the shops API.
//
// Attributes holds the flattened raw top-level scalar fields of the shop
// payload so that operator-configured metadata mappings can address fields
// this model does not name explicitly.
type Shop struct {
	ID                 int64
	Name               string
	IsProfessional     bool
	ContactInformation ContactInformation
	CustomFields       []CustomField
	Attributes         map[string]string
}

// CustomFieldValue returns the value of the custom field with the given code
// and whether the field is present on the shop.
func (s *Shop) CustomFieldValue(code string) (string, bool) {
	for _, f := range s.CustomFields {
		if f.Code == code {
			return f.Value, true
		}
	}
	return "", false
}

// Attribute returns the raw shop attribute for key, with a presence flag.
func (s *Shop) Attribute(key string) (string, bool) {
	v, ok := s.Attributes[key]
	return v, ok
}
