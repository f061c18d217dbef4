package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentInput(amount float64) PaymentInput {
	return PaymentInput{
		Amount: decimal.NewFromFloat(amount),
		Date:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		Method: MethodPix,
		UserID: uuid.New(),
	}
}

func TestRecordPayment_FullSettlement(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 100, 0, StatusPending)

	res, err := RecordPayment(inst, paymentInput(100))
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, res.Installment.Status)
	assert.True(t, res.Installment.PaidAmount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, res.Installment.PaymentDate)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), *res.Installment.PaymentDate)

	assert.True(t, res.Settled)
	assert.True(t, res.DebtDelta.Equal(decimal.NewFromInt(-100)),
		"customer debt must drop by the installment amount, got %s", res.DebtDelta)

	assert.Equal(t, inst.ID, res.Payment.InstallmentID)
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, MethodPix, res.Payment.PaymentMethod)
}

func TestRecordPayment_PartialKeepsPending(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 150, 0, StatusPending)

	res, err := RecordPayment(inst, paymentInput(50))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Installment.Status)
	assert.True(t, res.Installment.PaidAmount.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, res.Installment.PaymentDate)
	assert.False(t, res.Settled)
	assert.True(t, res.DebtDelta.IsZero(),
		"debt only drops on full settlement, got %s", res.DebtDelta)
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 100, 0, StatusPending)

	_, err := RecordPayment(inst, paymentInput(0))
	assert.ErrorIs(t, err, ErrInvalidPaymentAmount)

	_, err = RecordPayment(inst, paymentInput(-10))
	assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

func TestRecordPayment_RejectsOverpayment(t *testing.T) {
	// amount=150, paidAmount=100 -> remaining=50, a payment of 60 is rejected.
	inst := makeInstallment(1, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 150, 100, StatusPending)

	_, err := RecordPayment(inst, paymentInput(60))
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)

	// Rejection is idempotent: a second identical call still rejects and the
	// input installment was never touched.
	_, err = RecordPayment(inst, paymentInput(60))
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
	assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, StatusPending, inst.Status)
}

func TestRecordPayment_LateFeeWidensCeiling(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 100, 0, StatusPending)

	in := paymentInput(102)
	in.LateFee = decimal.NewFromInt(2)

	res, err := RecordPayment(inst, in)
	require.NoError(t, err)

	// Only the principal portion is credited; the fee stays on the record.
	assert.True(t, res.Installment.PaidAmount.Equal(decimal.NewFromInt(100)),
		"paid amount must never exceed the installment amount, got %s", res.Installment.PaidAmount)
	assert.True(t, res.Installment.LateFee.Equal(decimal.NewFromInt(2)))
	assert.True(t, res.Settled)
	assert.True(t, res.DebtDelta.Equal(decimal.NewFromInt(-100)))
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(102)))
}

func TestRecordPayment_DiscountNarrowsCeilingAndSettles(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 100, 0, StatusPending)

	in := paymentInput(95)
	in.Discount = decimal.NewFromInt(10)
	_, err := RecordPayment(inst, in)
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance, "ceiling shrinks to 90 with a 10 discount")

	in = paymentInput(90)
	in.Discount = decimal.NewFromInt(10)
	res, err := RecordPayment(inst, in)
	require.NoError(t, err)

	assert.True(t, res.Settled, "paying amount-minus-discount settles the installment")
	assert.Equal(t, StatusPaid, res.Installment.Status)
	assert.True(t, res.DebtDelta.Equal(decimal.NewFromInt(-100)))
}

func TestRecordPayment_OverdueStaysOpenUntilSettled(t *testing.T) {
	dueDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inst := makeInstallment(1, dueDate, 100, 0, StatusPending)
	asOf := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.True(t, inst.IsOverdue(asOf))

	res, err := RecordPayment(inst, paymentInput(40))
	require.NoError(t, err)

	// A partial payment does not clear the overdue condition.
	assert.True(t, res.Installment.IsOverdue(asOf))

	res2, err := RecordPayment(res.Installment, paymentInput(60))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, res2.Installment.Status)
	assert.False(t, res2.Installment.IsOverdue(asOf))
}

func TestRecordPayment_PaidAmountBoundsHoldAcrossSequence(t *testing.T) {
	inst := makeInstallment(1, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 250, 0, StatusPending)

	for _, amount := range []float64{50, 75.5, 24.5, 100} {
		res, err := RecordPayment(inst, paymentInput(amount))
		require.NoError(t, err)
		inst = res.Installment

		assert.False(t, inst.PaidAmount.IsNegative())
		assert.True(t, inst.PaidAmount.LessThanOrEqual(inst.Amount),
			"0 <= paidAmount <= amount must hold after every payment, got %s", inst.PaidAmount)
	}

	assert.Equal(t, StatusPaid, inst.Status)
	assert.True(t, inst.Remaining().IsZero())
}
