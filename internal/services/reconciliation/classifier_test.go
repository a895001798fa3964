package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/testutil/fixtures"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultSuppressionMarkers, []string{"cus_wholesale", " cus_partner "})

	tests := []struct {
		name   string
		record domain.SettlementRecord
		want   domain.Classification
	}{
		{
			name:   "platform customer",
			record: fixtures.NewSettlement().WithCustomer("cus_1").Build(),
			want:   domain.ClassificationUnclassified,
		},
		{
			name:   "no customer id",
			record: fixtures.NewSettlement().WithoutCustomer().WithEmail("").Build(),
			want:   domain.ClassificationNoCustomer,
		},
		{
			name:   "exclusion list customer",
			record: fixtures.NewSettlement().WithCustomer("cus_wholesale").Build(),
			want:   domain.ClassificationExclusionList,
		},
		{
			name:   "exclusion list ids are trimmed",
			record: fixtures.NewSettlement().WithCustomer("cus_partner").Build(),
			want:   domain.ClassificationExclusionList,
		},
		{
			name:   "suppression marker",
			record: fixtures.NewSettlement().WithEmail("dev+test@shop.test").Build(),
			want:   domain.ClassificationSuppressed,
		},
		{
			name:   "suppression marker is case insensitive",
			record: fixtures.NewSettlement().WithEmail("QA@EXAMPLE.COM").Build(),
			want:   domain.ClassificationSuppressed,
		},
		{
			name:   "suppression wins over exclusion list",
			record: fixtures.NewSettlement().WithCustomer("cus_wholesale").WithEmail("ops+internal@shop.test").Build(),
			want:   domain.ClassificationSuppressed,
		},
		{
			name:   "suppression wins over missing customer",
			record: fixtures.NewSettlement().WithoutCustomer().WithEmail("x+test@shop.test").Build(),
			want:   domain.ClassificationSuppressed,
		},
		{
			name:   "exclusion ids are case sensitive",
			record: fixtures.NewSettlement().WithCustomer("CUS_WHOLESALE").Build(),
			want:   domain.ClassificationUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.record))
		})
	}
}

func TestNewClassifier_IgnoresBlankMarkers(t *testing.T) {
	c := NewClassifier([]string{"", "   ", "+qa@"}, nil)

	assert.False(t, c.IsSuppressed("buyer@shop.test"))
	assert.True(t, c.IsSuppressed("me+QA@shop.test"))
	assert.False(t, c.IsSuppressed(""))
}
