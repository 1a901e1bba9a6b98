// Package report renders settlement records and shift reports as printable
// plain-text tables.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"comanda/internal/domain"
)

const stamp = "2006-01-02 15:04:05"

// Receipt renders the printed receipt of a settled table.
func Receipt(rec domain.SettlementRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "TABLE %d\n", rec.TableNumber)
	fmt.Fprintf(&buf, "Opened:  %s\n", rec.OpenedAt.UTC().Format(stamp))
	fmt.Fprintf(&buf, "Settled: %s\n", rec.SettledAt.UTC().Format(stamp))
	fmt.Fprintf(&buf, "Receipt: %s\n\n", rec.ID)

	table := tablewriter.NewWriter(&buf)
	table.Header("Item", "Qty", "Unit", "Subtotal")
	for _, line := range rec.Lines {
		err := table.Append(
			line.ProductName,
			strconv.Itoa(line.Quantity),
			line.UnitPrice.StringFixed(2),
			line.Subtotal.StringFixed(2),
		)
		if err != nil {
			return nil, fmt.Errorf("rendering receipt line: %w", err)
		}
	}
	table.Footer("", "", "Total", rec.Total.StringFixed(2))

	if err := table.Render(); err != nil {
		return nil, fmt.Errorf("rendering receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// Shift renders the end-of-shift report: one row per item, grouped by table,
// followed by the totals.
func Shift(r domain.ShiftReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SHIFT REPORT %s\n", r.ID)
	fmt.Fprintf(&buf, "Closed: %s\n", r.ClosedAt.UTC().Format(stamp))
	fmt.Fprintf(&buf, "Orders: %d  Items: %d\n\n", r.OrderCount, r.ItemCount)

	if r.IsEmpty() {
		buf.WriteString("No orders this shift.\n")
		return buf.Bytes(), nil
	}

	table := tablewriter.NewWriter(&buf)
	table.Header("Table", "Order", "Opened", "Item", "Qty", "Subtotal", "Status", "Paid")
	for _, t := range r.Tables {
		for _, o := range t.Orders {
			for _, item := range o.Items {
				err := table.Append(
					strconv.FormatUint(uint64(t.TableNumber), 10),
					strconv.FormatUint(o.ID, 10),
					clock(o.CreatedAt),
					item.ProductName,
					strconv.Itoa(item.Quantity),
					item.Subtotal.StringFixed(2),
					string(item.Status),
					yesNo(item.Paid),
				)
				if err != nil {
					return nil, fmt.Errorf("rendering shift line: %w", err)
				}
			}
		}
	}
	if err := table.Render(); err != nil {
		return nil, fmt.Errorf("rendering shift report: %w", err)
	}

	fmt.Fprintf(&buf, "\nPaid:    %s\n", r.PaidTotal.StringFixed(2))
	fmt.Fprintf(&buf, "Unpaid:  %s\n", r.UnpaidTotal.StringFixed(2))
	fmt.Fprintf(&buf, "Total:   %s\n", r.GrandTotal.StringFixed(2))
	return buf.Bytes(), nil
}

func clock(t time.Time) string {
	return t.UTC().Format("15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
