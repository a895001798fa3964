package reconciliation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/testutil/fixtures"
	"github.com/kevin07696/settlement-reconciler/internal/testutil/mocks"
)

const ammo = "prod_ammo"

func newTestService(lookup *mocks.MockInvoiceLookup, exclusion ...string) (*Service, *mocks.MockLogger) {
	logger := mocks.NewMockLogger()
	svc := NewService(Config{
		ExcludedProductID:    ammo,
		ExclusionCustomerIDs: exclusion,
	}, lookup, logger)
	return svc, logger
}

func TestReconcile_NoCustomerRowIsFullyExcluded(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup()
	svc, _ := newTestService(lookup)
	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithoutCustomer().WithEmail("").WithGross("100.00").WithFee("-3.00").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assertDecimal(t, "100.00", result.Figures.GrossBeforeFees)
	assertDecimal(t, "0.00", result.Figures.PlatformGrossSales)
	assertDecimal(t, "103.00", result.Figures.NetBalanceChange)
	assertDecimal(t, "0.00", result.Figures.PlatformNetDisbursed)
	assertDecimal(t, "100.00", result.Totals.ExcludedGross)
	assertDecimal(t, "3.00", result.Totals.ExcludedFee)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, domain.ClassificationNoCustomer, result.Trace[0].Classification)
	assert.False(t, result.Trace[0].InvoiceLookedUp)
	assert.Empty(t, lookup.Calls, "no-customer rows are never looked up")
}

func TestReconcile_ExclusionListProratesAndDropsExcludedProduct(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().WithInvoice(
		fixtures.NewInvoice("cus_wholesale").
			WithLine("A", 1, "50").
			WithLine(ammo, 1, "50").
			Build())
	svc, _ := newTestService(lookup, "cus_wholesale")
	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_wholesale").WithGross("100.00").WithFee("10").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	trace := result.Trace[0]
	assert.Equal(t, domain.ClassificationExclusionList, trace.Classification)
	assert.True(t, trace.InvoiceFound)
	assertDecimal(t, "5.00", trace.Allocation["A"])
	assertDecimal(t, "5.00", trace.Allocation[ammo])
	assert.True(t, trace.HasExcludedProduct)
	assertDecimal(t, "50", trace.ExcludedProductAmount)
	assertDecimal(t, "50", trace.ContributedGross)
	assertDecimal(t, "-5.00", trace.ContributedFee)

	assertDecimal(t, "50", result.Totals.ExcludedGross)
	assertDecimal(t, "-5.00", result.Totals.ExcludedFee)
	assertDecimal(t, "50", result.Totals.ExclusionListAmmoGross)
	assertDecimal(t, "0", result.Totals.AmmoAdjustment)

	assertDecimal(t, "100.00", result.Figures.GrossBeforeFees)
	assertDecimal(t, "90.00", result.Figures.NetBalanceChange)
	assertDecimal(t, "50.00", result.Figures.PlatformGrossSales)
	assertDecimal(t, "45.00", result.Figures.PlatformNetDisbursed)
}

func TestReconcile_SuppressedContributesNothing(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().WithInvoice(
		fixtures.NewInvoice("cus_wholesale").WithLine("A", 1, "10").Build())
	svc, _ := newTestService(lookup, "cus_wholesale")

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_wholesale").WithEmail("ops+internal@shop.test").Build(),
		fixtures.NewSettlement().WithCustomer("cus_2").WithEmail("qa@example.com").AsRefund("40").Build(),
		fixtures.NewSettlement().WithoutCustomer().WithEmail("x+test@shop.test").WithFee("7").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, Totals{Counts: ClassificationCounts{Suppressed: 3}}, result.Totals)
	assert.True(t, result.Figures.GrossBeforeFees.IsZero())
	assert.True(t, result.Figures.NetBalanceChange.IsZero())
	assert.True(t, result.Figures.PlatformGrossSales.IsZero())
	assert.True(t, result.Figures.PlatformNetDisbursed.IsZero())
	assert.Empty(t, lookup.Calls)
	for _, tr := range result.Trace {
		assert.Equal(t, domain.ClassificationSuppressed, tr.Classification)
	}
}

func TestReconcile_PlatformExcludedProductAdjustment(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithInvoice(fixtures.NewInvoice("cus_p").WithLine(ammo, 2, "30").WithLine("B", 1, "50").Build()).
		WithInvoice(fixtures.NewInvoice("cus_q").WithLine("B", 1, "20").Build())
	svc, _ := newTestService(lookup)

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithRow(1).WithCustomer("cus_p").WithGross("80").WithFee("2.40").Build(),
		fixtures.NewSettlement().WithRow(2).WithCustomer("cus_q").WithGross("20").WithFee("0.60").Build(),
		fixtures.NewSettlement().WithRow(3).WithCustomer("cus_r").WithGross("5").WithFee("0.15").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assertDecimal(t, "30", result.Totals.AmmoAdjustment)
	assertDecimal(t, "105", result.Figures.GrossBeforeFees)
	assertDecimal(t, "75", result.Figures.PlatformGrossSales)
	assertDecimal(t, "101.85", result.Figures.NetBalanceChange)
	assertDecimal(t, "101.85", result.Figures.PlatformNetDisbursed, "platform fees are not prorated")

	assert.True(t, result.Trace[0].HasExcludedProduct)
	assertDecimal(t, "30", result.Trace[0].ExcludedProductAmount)
	assert.True(t, result.Trace[1].InvoiceFound)
	assert.False(t, result.Trace[1].HasExcludedProduct)
	assert.True(t, result.Trace[2].InvoiceLookedUp)
	assert.False(t, result.Trace[2].InvoiceFound)
	assert.Equal(t, 3, result.Totals.Counts.Unclassified)
}

func TestReconcile_NoExcludedProductSkipsPlatformLookups(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithInvoice(fixtures.NewInvoice("cus_ex").WithLine(ammo, 1, "10").Build()).
		WithInvoice(fixtures.NewInvoice("cus_p").WithLine(ammo, 1, "40").Build())
	svc := NewService(Config{ExclusionCustomerIDs: []string{"cus_ex"}}, lookup, mocks.NewMockLogger())

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithRow(1).WithCustomer("cus_ex").WithGross("10").WithFee("1").Build(),
		fixtures.NewSettlement().WithRow(2).WithCustomer("cus_p").WithGross("40").WithFee("1.20").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, lookup.CallsFor("cus_ex"), "exclusion-list proration still needs the invoice")
	assert.Equal(t, 0, lookup.CallsFor("cus_p"))
	assert.False(t, result.Trace[1].InvoiceLookedUp)
	assert.True(t, result.Totals.AmmoAdjustment.IsZero())
	assertDecimal(t, "40", result.Figures.PlatformGrossSales)
}

func TestReconcile_LookupsAreSharedAcrossPasses(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithInvoice(fixtures.NewInvoice("cus_ex").WithLine("A", 1, "10").Build()).
		WithInvoice(fixtures.NewInvoice("cus_p").WithLine(ammo, 1, "4").Build())
	svc, _ := newTestService(lookup, "cus_ex")

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_ex").WithGross("10").WithFee("1").Build(),
		fixtures.NewSettlement().WithCustomer("cus_ex").WithGross("10").WithFee("1").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p").WithGross("4").WithFee("0.1").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p").WithGross("4").WithFee("0.1").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, lookup.CallsFor("cus_ex"))
	assert.Equal(t, 1, lookup.CallsFor("cus_p"))
	assert.Equal(t, LookupStats{Requests: 4, Remote: 2, CacheHits: 2}, result.Lookups)

	// each platform record is adjusted, as without the cache
	assertDecimal(t, "8", result.Totals.AmmoAdjustment)
	assertDecimal(t, "20", result.Totals.ExcludedGross)
}

func TestReconcile_LookupFailureFallsBackToUnprorated(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithError("cus_ex", errors.New("503 service unavailable")).
		WithError("cus_p", errors.New("timeout"))
	svc, logger := newTestService(lookup, "cus_ex")

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_ex").WithGross("60").WithFee("1.80").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p").WithGross("40").WithFee("1.20").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assertDecimal(t, "60", result.Totals.ExcludedGross)
	assertDecimal(t, "-1.80", result.Totals.ExcludedFee)
	assertDecimal(t, "0", result.Totals.AmmoAdjustment)
	assertDecimal(t, "40", result.Figures.PlatformGrossSales)

	assert.Equal(t, "503 service unavailable", result.Trace[0].LookupError)
	assert.False(t, result.Trace[0].InvoiceFound)
	assert.Equal(t, "timeout", result.Trace[1].LookupError)
	assert.Len(t, logger.Warnings(), 2)
	assert.Equal(t, 2, result.Lookups.Failures)
}

func TestReconcile_ZeroQuantityInvoiceDegradesToUnprorated(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithInvoice(fixtures.NewInvoice("cus_ex").WithLine("A", 0, "25").Build()).
		WithInvoice(fixtures.NewInvoice("cus_empty").Build())
	svc, logger := newTestService(lookup, "cus_ex", "cus_empty")

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_ex").WithGross("25").WithFee("1").Build(),
		fixtures.NewSettlement().WithCustomer("cus_empty").WithGross("5").WithFee("0.5").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	for _, tr := range result.Trace {
		assert.True(t, tr.InvoiceFound)
		assert.True(t, tr.ProrationFailed)
		assert.Nil(t, tr.Allocation)
	}
	assertDecimal(t, "30", result.Totals.ExcludedGross)
	assertDecimal(t, "-1.5", result.Totals.ExcludedFee)
	assert.Len(t, logger.Warnings(), 2)
}

func TestReconcile_RefundsFeedNetBalance(t *testing.T) {
	svc, _ := newTestService(mocks.NewMockInvoiceLookup())
	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_1").WithGross("100").WithFee("3").Build(),
		fixtures.NewSettlement().WithCustomer("cus_1").AsRefund("30").Build(),
		fixtures.NewSettlement().WithoutCustomer().WithCategory("fee").WithGross("0").WithFee("15").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	assertDecimal(t, "100", result.Totals.GrossBeforeFees)
	assertDecimal(t, "-30", result.Totals.NegativeGross)
	assertDecimal(t, "-18", result.Totals.TotalFee)
	assertDecimal(t, "52", result.Figures.NetBalanceChange)
	assertDecimal(t, "100", result.Figures.PlatformGrossSales)
	assertDecimal(t, "67", result.Figures.PlatformNetDisbursed)
}

func TestReconcile_SubtractionIdentity(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().
		WithInvoice(fixtures.NewInvoice("cus_ex1").WithLine("A", 3, "30.10").WithLine(ammo, 1, "12.34").WithLine("B", 2, "7.77").Build()).
		WithInvoice(fixtures.NewInvoice("cus_ex2").WithLine("C", 1, "19.99").Build()).
		WithInvoice(fixtures.NewInvoice("cus_p1").WithLine(ammo, 5, "44.44").Build()).
		WithInvoice(fixtures.NewInvoice("cus_p2").WithLine("A", 1, "9.99").WithLine(ammo, 1, "0.01").Build()).
		WithError("cus_p3", errors.New("boom"))
	svc, _ := newTestService(lookup, "cus_ex1", "cus_ex2", "cus_ex3")

	records := []domain.SettlementRecord{
		fixtures.NewSettlement().WithCustomer("cus_ex1").WithGross("50.21").WithFee("1.76").Build(),
		fixtures.NewSettlement().WithCustomer("cus_ex2").WithGross("19.99").WithFee("0.88").Build(),
		fixtures.NewSettlement().WithCustomer("cus_ex3").WithGross("7.00").WithFee("0.50").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p1").WithGross("44.44").WithFee("1.59").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p2").WithGross("10.00").WithFee("0.59").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p3").WithGross("3.33").WithFee("0.40").Build(),
		fixtures.NewSettlement().WithCustomer("cus_p1").AsRefund("44.44").Build(),
		fixtures.NewSettlement().WithoutCustomer().WithCategory("adjustment").WithGross("-2.00").WithFee("0").Build(),
		fixtures.NewSettlement().WithCustomer("cus_ex1").WithEmail("a+test@shop.test").WithGross("999").Build(),
	}

	result, err := svc.Reconcile(context.Background(), records)
	require.NoError(t, err)

	f, tot := result.Figures, result.Totals
	assert.True(t, f.PlatformGrossSales.Add(tot.ExcludedGross).Add(tot.AmmoAdjustment).Equal(f.GrossBeforeFees))
	assert.True(t, f.PlatformNetDisbursed.Add(tot.ExcludedGross).Add(tot.ExcludedFee).Equal(f.NetBalanceChange))

	counts := tot.Counts
	assert.Equal(t, len(records), counts.Suppressed+counts.NoCustomer+counts.ExclusionList+counts.Unclassified)
	assert.Equal(t, 1, counts.Suppressed)
	assert.Equal(t, 1, counts.NoCustomer)
	assert.Equal(t, 3, counts.ExclusionList)
	assert.Equal(t, 4, counts.Unclassified)
}

func TestReconcile_ContextCanceled(t *testing.T) {
	svc, _ := newTestService(mocks.NewMockInvoiceLookup())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Reconcile(ctx, []domain.SettlementRecord{fixtures.NewSettlement().Build()})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconcileReport(t *testing.T) {
	lookup := mocks.NewMockInvoiceLookup().WithInvoice(
		fixtures.NewInvoice("cus_ex").WithLine("A", 1, "40").WithLine(ammo, 1, "60").Build())
	svc, logger := newTestService(lookup, "cus_ex")

	input := "reporting_category,customer_id,customer_email,gross,fee\n" +
		"charge,cus_ex,wholesale@shop.test,100.00,4.00\n" +
		"charge,cus_p,buyer@shop.test,50.00,1.50\n" +
		"charge,,,12.00,oops\n"

	result, err := svc.ReconcileReport(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Coerced, 1)
	assert.Equal(t, "fee", result.Coerced[0].Column)
	assert.Contains(t, logger.Warnings(), "Unparsable amount read as zero")

	assertDecimal(t, "162.00", result.Figures.GrossBeforeFees)
	assertDecimal(t, "156.50", result.Figures.NetBalanceChange)
	// 162 - (40 + 12) - 0
	assertDecimal(t, "110.00", result.Figures.PlatformGrossSales)
	// 156.50 - 52 - (-2.00)
	assertDecimal(t, "106.50", result.Figures.PlatformNetDisbursed)
}

func TestReconcileReport_Malformed(t *testing.T) {
	svc, _ := newTestService(mocks.NewMockInvoiceLookup())

	result, err := svc.ReconcileReport(context.Background(), strings.NewReader(""))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestNewService_DefaultSuppressionMarkers(t *testing.T) {
	svc, _ := newTestService(mocks.NewMockInvoiceLookup())
	assert.True(t, svc.classifier.IsSuppressed("someone@example.com"))

	custom := NewService(Config{SuppressionMarkers: []string{"@corp.test"}}, mocks.NewMockInvoiceLookup(), mocks.NewMockLogger())
	assert.False(t, custom.classifier.IsSuppressed("someone@example.com"))
	assert.True(t, custom.classifier.IsSuppressed("me@CORP.test"))
}
