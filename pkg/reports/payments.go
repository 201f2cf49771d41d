// Package reports renders spreadsheet exports for the school staff.
package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
	"gorm.io/gorm"
)

var paymentsHeader = []string{
	"Pagamento", "Matrícula", "Canal", "Valor", "Moeda", "Status", "Detalhe", "Criado em", "Pago em",
}

// BuildPayments renders every payment order into a workbook, newest first.
func BuildPayments(ctx context.Context, db *gorm.DB) (*excelize.File, error) {
	var orders []models.PaymentOrder
	if err := db.WithContext(ctx).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment orders: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Pagamentos"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range paymentsHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, order := range orders {
		paidAt := ""
		if order.PaidAt != nil {
			paidAt = order.PaidAt.Format("02/01/2006 15:04")
		}
		row := []interface{}{
			utils.EncodePaymentID(order.ID),
			order.ReferenceID,
			order.Channel,
			utils.CentsToDecimal(order.Amount).InexactFloat64(),
			order.Currency,
			order.Status,
			order.StatusDetail,
			order.CreatedAt.Format("02/01/2006 15:04"),
			paidAt,
		}
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
