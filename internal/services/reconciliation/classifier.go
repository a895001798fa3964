package reconciliation

import (
	"strings"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// DefaultSuppressionMarkers identify internal and test accounts by email substring.
var DefaultSuppressionMarkers = []string{
	"+test@",
	"+internal@",
	"@example.com",
}

// Classifier assigns each settlement record to exactly one accounting bucket.
type Classifier struct {
	markers   []string
	exclusion map[string]struct{}
}

// NewClassifier builds a classifier. Markers are matched case-insensitively;
// blank markers are ignored since they would match every email.
func NewClassifier(markers []string, exclusionCustomerIDs []string) *Classifier {
	c := &Classifier{
		markers:   make([]string, 0, len(markers)),
		exclusion: make(map[string]struct{}, len(exclusionCustomerIDs)),
	}
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			c.markers = append(c.markers, m)
		}
	}
	for _, id := range exclusionCustomerIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			c.exclusion[id] = struct{}{}
		}
	}
	return c
}

// Classify returns the record's bucket. Suppression wins over every other
// rule, so an internal account on the exclusion list is still suppressed.
func (c *Classifier) Classify(r domain.SettlementRecord) domain.Classification {
	if c.IsSuppressed(r.CustomerEmail) {
		return domain.ClassificationSuppressed
	}
	if !r.HasCustomer() {
		return domain.ClassificationNoCustomer
	}
	if c.IsExcludedCustomer(r.CustomerID) {
		return domain.ClassificationExclusionList
	}
	return domain.ClassificationUnclassified
}

// IsSuppressed reports whether email carries any suppression marker
func (c *Classifier) IsSuppressed(email string) bool {
	if email == "" {
		return false
	}
	email = strings.ToLower(email)
	for _, m := range c.markers {
		if strings.Contains(email, m) {
			return true
		}
	}
	return false
}

// IsExcludedCustomer reports whether customerID is on the exclusion list
func (c *Classifier) IsExcludedCustomer(customerID string) bool {
	_, ok := c.exclusion[customerID]
	return ok
}
