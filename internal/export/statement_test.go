package export_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/shop-wallet/internal/export"
	"github.com/storefront-labs/shop-wallet/internal/models"
)

const testSecret = "statement-test-secret"

func sampleTransactions() []models.TransactionDetail {
	productID := int64(7)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.TransactionDetail{
		{
			Transaction: models.Transaction{
				ID: 1, Reference: "ref-1", AccountID: 1, Amount: 100000,
				Kind: models.KindDeposit, Status: models.StatusCompleted,
				PaymentMethod: models.MethodQR, CreatedAt: created,
				Description: "top up", ProofImageURL: "http://localhost:8080/uploads/a.png",
			},
			Account: &models.AccountSummary{Name: "Buyer", Username: "buyer1", Email: "buyer@example.com"},
		},
		{
			Transaction: models.Transaction{
				ID: 2, Reference: "ref-2", AccountID: 1, Amount: 50000,
				Kind: models.KindPurchase, Status: models.StatusPending,
				PaymentMethod: models.MethodBalance, ProductID: &productID,
				CreatedAt: created.Add(time.Hour),
			},
			Product: &models.ProductSummary{Name: "Keyboard", Price: 50000},
			Account: &models.AccountSummary{Name: "Buyer", Username: "buyer1", Email: "buyer@example.com"},
		},
	}
}

func TestStatement_ContainsTransactions(t *testing.T) {
	data, err := export.Statement(sampleTransactions(), testSecret)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))

	list := doc.FindElement("/Statement/Transactions")
	require.NotNil(t, list)
	assert.Equal(t, "2", list.SelectAttrValue("count", ""))

	txs := doc.FindElements("/Statement/Transactions/Transaction")
	require.Len(t, txs, 2)

	first := txs[0]
	assert.Equal(t, "ref-1", first.SelectAttrValue("reference", ""))
	assert.Equal(t, "deposit", first.FindElement("./Kind").Text())
	assert.Equal(t, "completed", first.FindElement("./Status").Text())
	assert.Equal(t, "100000.00", first.FindElement("./Amount").Text())
	assert.Equal(t, "buyer1", first.FindElement("./Account/Username").Text())

	second := txs[1]
	require.NotNil(t, second.FindElement("./Product"))
	assert.Equal(t, "Keyboard", second.FindElement("./Product/Name").Text())
	assert.Nil(t, second.FindElement("./Description"))
}

func TestStatement_SignatureRoundTrip(t *testing.T) {
	data, err := export.Statement(sampleTransactions(), testSecret)
	require.NoError(t, err)

	ok, err := export.Verify(data, testSecret)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = export.Verify(data, "other-secret")
	require.NoError(t, err)
	assert.False(t, ok, "verification with the wrong secret must fail")
}

func TestVerify_DetectsTampering(t *testing.T) {
	data, err := export.Statement(sampleTransactions(), testSecret)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	doc.FindElement("/Statement/Transactions/Transaction/Amount").SetText("1.00")
	tampered, err := doc.WriteToBytes()
	require.NoError(t, err)

	ok, err := export.Verify(tampered, testSecret)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_RejectsMalformedInput(t *testing.T) {
	_, err := export.Verify([]byte("<NotAStatement/>"), testSecret)
	assert.Error(t, err)

	_, err = export.Verify([]byte("not xml at all"), testSecret)
	assert.Error(t, err)
}

func TestStatement_EmptyLedger(t *testing.T) {
	data, err := export.Statement(nil, testSecret)
	require.NoError(t, err)

	ok, err := export.Verify(data, testSecret)
	require.NoError(t, err)
	assert.True(t, ok)
}
