// Package export renders signed XML ledger statements for auditors.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/storefront-labs/shop-wallet/internal/models"
	"github.com/storefront-labs/shop-wallet/internal/utils"
)

// Statement builds an XML statement over the given transactions. The
// Transactions subtree is signed with HMAC-SHA256 and the signature is
// attached to the Statement root, so the file can be verified offline.
func Statement(txs []models.TransactionDetail, secret string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	stmt := doc.CreateElement("Statement")
	stmt.CreateAttr("generatedAt", time.Now().UTC().Format(time.RFC3339))

	list := stmt.CreateElement("Transactions")
	list.CreateAttr("count", strconv.Itoa(len(txs)))
	for i := range txs {
		appendTransaction(list, &txs[i])
	}

	// Indent before signing so the signed bytes match what a verifier
	// re-serializes after parsing the written file.
	doc.Indent(2)

	payload, err := serializeSubtree(list)
	if err != nil {
		return nil, err
	}
	stmt.CreateAttr("signature", utils.Sign(payload, secret))

	return doc.WriteToBytes()
}

// Verify parses a statement produced by Statement and checks its
// signature.
func Verify(data []byte, secret string) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false, fmt.Errorf("failed to parse statement: %w", err)
	}

	stmt := doc.FindElement("/Statement")
	if stmt == nil {
		return false, fmt.Errorf("statement element not found")
	}
	signature := stmt.SelectAttrValue("signature", "")
	if signature == "" {
		return false, fmt.Errorf("statement is unsigned")
	}
	list := stmt.FindElement("./Transactions")
	if list == nil {
		return false, fmt.Errorf("transactions element not found")
	}

	payload, err := serializeSubtree(list)
	if err != nil {
		return false, err
	}
	return utils.VerifySignature(payload, signature, secret), nil
}

func appendTransaction(parent *etree.Element, tx *models.TransactionDetail) {
	el := parent.CreateElement("Transaction")
	el.CreateAttr("id", strconv.FormatInt(tx.ID, 10))
	el.CreateAttr("reference", tx.Reference)

	el.CreateElement("AccountID").SetText(strconv.FormatInt(tx.AccountID, 10))
	el.CreateElement("Amount").SetText(strconv.FormatFloat(tx.Amount, 'f', 2, 64))
	el.CreateElement("Kind").SetText(string(tx.Kind))
	el.CreateElement("Status").SetText(string(tx.Status))
	el.CreateElement("PaymentMethod").SetText(string(tx.PaymentMethod))
	el.CreateElement("CreatedAt").SetText(tx.CreatedAt.UTC().Format(time.RFC3339))
	if tx.Description != "" {
		el.CreateElement("Description").SetText(tx.Description)
	}
	if tx.ProofImageURL != "" {
		el.CreateElement("ProofImageURL").SetText(tx.ProofImageURL)
	}
	if tx.Product != nil {
		p := el.CreateElement("Product")
		p.CreateElement("Name").SetText(tx.Product.Name)
		p.CreateElement("Price").SetText(strconv.FormatFloat(tx.Product.Price, 'f', 2, 64))
	}
	if tx.Account != nil {
		a := el.CreateElement("Account")
		a.CreateElement("Username").SetText(tx.Account.Username)
		a.CreateElement("Email").SetText(tx.Account.Email)
	}
}

func serializeSubtree(el *etree.Element) ([]byte, error) {
	sub := etree.NewDocument()
	sub.SetRoot(el.Copy())
	data, err := sub.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize statement: %w", err)
	}
	return data, nil
}
