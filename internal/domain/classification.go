package domain

// Classification is the accounting bucket a settlement record falls into
type Classification string

const (
	// ClassificationSuppressed marks internal or test accounts; counted nowhere
	ClassificationSuppressed Classification = "suppressed"
	// ClassificationNoCustomer marks processor-level rows with no customer id
	ClassificationNoCustomer Classification = "no_customer"
	// ClassificationExclusionList marks customers listed as a separate sales channel
	ClassificationExclusionList Classification = "exclusion_list"
	// ClassificationUnclassified marks platform transactions, derived by subtraction
	ClassificationUnclassified Classification = "unclassified"
)

// AllClassifications lists every bucket in reporting order
var AllClassifications = []Classification{
	ClassificationUnclassified,
	ClassificationExclusionList,
	ClassificationNoCustomer,
	ClassificationSuppressed,
}

// IsValid checks if the classification is a known bucket
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationSuppressed, ClassificationNoCustomer,
		ClassificationExclusionList, ClassificationUnclassified:
		return true
	default:
		return false
	}
}

// Label returns a human readable bucket name
func (c Classification) Label() string {
	switch c {
	case ClassificationSuppressed:
		return "Suppressed"
	case ClassificationNoCustomer:
		return "No customer"
	case ClassificationExclusionList:
		return "Exclusion list"
	case ClassificationUnclassified:
		return "Platform"
	default:
		return string(c)
	}
}
