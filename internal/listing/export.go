package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"shipgate/internal/model"
)

// WriteCSV exports the (already filtered) collection as the dashboard's
// download format.
func WriteCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Order ID", "Date", "Total", "Payment Method", "Status"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		row := []string{
			o.OrderID,
			o.OrderDate,
			strconv.FormatFloat(o.TotalOrderValue, 'f', 2, 64),
			o.PaymentMethod,
			string(o.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
