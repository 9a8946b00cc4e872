package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samber/oops"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"hotel-management/models"
)

var ErrBillNotFound = errors.New("bill not found")

const billSheet = "Bills"

var billHeaders = []string{"Bill ID", "Date", "Guest", "Room", "Check-in", "Check-out", "Nights", "Guests", "Total", "Deposit", "Amount Due", "Status"}

type BillService struct {
	DB *gorm.DB
}

func NewBillService(db *gorm.DB) *BillService {
	return &BillService{DB: db}
}

func (s *BillService) List(ctx context.Context) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Rental.Room").
		Order("id DESC").
		Find(&bills).Error
	if err != nil {
		return nil, oops.Code("BILL_LIST_FAILED").Wrap(err)
	}
	return bills, nil
}

// Delete removes the bill together with the rental it owns.
func (s *BillService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := tx.First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return oops.Code("BILL_DELETE_FAILED").With("bill_id", id).Wrap(err)
		}
		if err := tx.Where("bill_id = ?", id).Delete(&models.RoomRentalForm{}).Error; err != nil {
			return oops.Code("BILL_DELETE_FAILED").With("bill_id", id).Wrap(err)
		}
		if err := tx.Delete(&bill).Error; err != nil {
			return oops.Code("BILL_DELETE_FAILED").With("bill_id", id).Wrap(err)
		}
		return nil
	})
}

// Breakdown decodes the charge breakdown stored with the bill.
func Breakdown(bill models.Bill) (Quote, error) {
	var q Quote
	if len(bill.Breakdown) == 0 {
		return q, nil
	}
	if err := json.Unmarshal(bill.Breakdown, &q); err != nil {
		return q, fmt.Errorf("decode bill %d breakdown: %w", bill.ID, err)
	}
	return q, nil
}

// ExportXLSX writes every bill as one row of an Excel workbook.
func (s *BillService) ExportXLSX(ctx context.Context, w io.Writer) error {
	bills, err := s.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", billSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for col, header := range billHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(billHeaders), 1)
	if err := f.SetCellStyle(billSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, bill := range bills {
		q, err := Breakdown(bill)
		if err != nil {
			return err
		}

		row := []interface{}{
			bill.ID,
			bill.CreationDate.Format(DateLayout),
			bill.User.Name,
			"", "", "",
			q.Nights,
			q.Guests,
			bill.TotalAmount,
			q.Deposit,
			q.AmountDue,
			"open",
		}
		if r := bill.Rental; r != nil {
			row[3] = r.Room.Name
			row[4] = r.CheckInDate.Format(DateLayout)
			row[5] = r.CheckOutDate.Format(DateLayout)
			if !r.IsOpen() {
				row[11] = "settled"
			}
		}

		for col, value := range row {
			if err := setCell(f, col+1, i+2, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(billSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(billSheet, cell, value)
}
