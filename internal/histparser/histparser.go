// Package histparser parses one rendered page of the transaction history into
// transaction records, following the listing's fixed structural grammar:
// status heading containers, each followed by a group of date headings with
// their line items. Any deviation from the grammar rejects the whole page.
package histparser

import (
	"strings"
	"time"

	"fjacquet/txn-recon/internal/dateutils"
	"fjacquet/txn-recon/internal/models"
	"fjacquet/txn-recon/internal/orderid"
	"fjacquet/txn-recon/internal/reconerror"

	"golang.org/x/net/html"
)

// Structural markers of the rendered listing.
const (
	classStatusHeading = "apx-transactions-sleeve-header-container"
	classDateHeading   = "apx-transaction-date-container"
	classItemGroup     = "pmts-portal-component"
	classLineItem      = "apx-transactions-line-item-component-container"
)

const orderLinkPrefix = "Order #"

// Parse extracts the ordered list of transaction records from one page of
// rendered markup. It fails with MalformedSourceError on any grammar
// violation; no records are yielded from a rejected page.
func Parse(content string) ([]models.TransactionRecord, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, &reconerror.MalformedSourceError{Detail: "unparseable page markup", Err: err}
	}

	headings := findAllByClass(doc, classStatusHeading)
	if len(headings) == 0 {
		return nil, &reconerror.MalformedSourceError{Detail: "no status headings on page"}
	}

	var records []models.TransactionRecord
	for _, heading := range headings {
		statusText := strings.TrimSpace(textContent(heading))
		status := models.Status(statusText)
		if status != models.StatusCompleted && status != models.StatusInProgress {
			return nil, &reconerror.MalformedSourceError{Detail: "unrecognized status heading: " + statusText}
		}

		group := nextElementSibling(heading)
		if group == nil {
			return nil, &reconerror.MalformedSourceError{Detail: "status heading without entry group"}
		}
		inner := firstElementChild(group)
		if inner == nil {
			return nil, &reconerror.MalformedSourceError{Detail: "empty entry group"}
		}

		groupRecords, err := parseGroup(inner, status)
		if err != nil {
			return nil, err
		}
		records = append(records, groupRecords...)
	}

	return records, nil
}

// parseGroup walks one status group: a strict alternation of date headings and
// item groups.
func parseGroup(inner *html.Node, heading models.Status) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	var date time.Time
	havePending := false

	for _, child := range elementChildren(inner) {
		switch {
		case hasClass(child, classDateHeading):
			if havePending {
				return nil, &reconerror.MalformedSourceError{Detail: "date heading without entries"}
			}
			d, err := dateutils.ParseDate(textContent(child))
			if err != nil {
				return nil, &reconerror.MalformedSourceError{Detail: "invalid date heading", Err: err}
			}
			date = d
			havePending = true

		case hasClass(child, classItemGroup):
			if !havePending {
				return nil, &reconerror.MalformedSourceError{Detail: "entries before date heading"}
			}
			for _, item := range elementChildren(child) {
				if !hasClass(item, classLineItem) {
					continue // separators between items
				}
				rec, err := parseLineItem(item, heading, date)
				if err != nil {
					return nil, err
				}
				records = append(records, rec)
			}
			havePending = false

		default:
			return nil, &reconerror.MalformedSourceError{Detail: "unexpected element in entry group"}
		}
	}

	if havePending {
		return nil, &reconerror.MalformedSourceError{Detail: "date heading without entries"}
	}
	return records, nil
}

// parseLineItem decodes one line item container into a record. The layout is
// positional: payment method and amount first, an extra status row only under
// an in-progress heading, then order link and merchant.
func parseLineItem(item *html.Node, heading models.Status, date time.Time) (models.TransactionRecord, error) {
	var zero models.TransactionRecord

	rows := elementChildren(item)
	if len(rows) < 3 {
		return zero, &reconerror.MalformedSourceError{Detail: "incomplete line item"}
	}

	head := elementChildren(rows[0])
	if len(head) < 2 {
		return zero, &reconerror.MalformedSourceError{Detail: "line item missing payment method or amount"}
	}
	paymentMethod := strings.TrimSpace(textContent(head[0]))
	amountText := strings.TrimSpace(textContent(head[1]))
	if paymentMethod == "" || amountText == "" {
		return zero, &reconerror.MalformedSourceError{Detail: "line item missing payment method or amount"}
	}

	status := heading
	next := 1
	if heading == models.StatusInProgress {
		if len(rows) < 4 {
			return zero, &reconerror.MalformedSourceError{Detail: "in-progress line item missing status"}
		}
		statusText := strings.TrimSpace(textContent(rows[1]))
		if statusText == "" {
			return zero, &reconerror.MalformedSourceError{Detail: "in-progress line item missing status"}
		}
		status = models.Status(statusText)
		next = 2
	}

	link := firstDescendant(rows[next], "a")
	if link == nil {
		return zero, &reconerror.MalformedSourceError{Detail: "line item missing order link"}
	}
	orderID := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(textContent(link)), orderLinkPrefix))
	if !orderid.IsValid(orderID) {
		return zero, &reconerror.MalformedSourceError{Detail: "unrecognized order identifier: " + orderID}
	}

	merchant := strings.TrimSpace(textContent(rows[next+1]))

	amount, err := models.ParseAmount(amountText)
	if err != nil {
		return zero, &reconerror.MalformedSourceError{Detail: "invalid line item amount", Err: err}
	}

	return models.TransactionRecord{
		Date:          date,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		OrderID:       orderID,
		Merchant:      merchant,
		Status:        status,
	}, nil
}
