package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
)

// ExportMaxDays 单次导出的最大天数
const ExportMaxDays = 92

// ── 导出模块业务错误 ──

var (
	ErrExportRange        = fmt.Errorf("%w: 导出日期区间无效", pkgerrors.ErrValidation)
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 表格：每个收容所一行，每个业务日两列（人数 / 空床）。
type ExportService interface {
	ExportCounts(ctx context.Context, from, to businessday.Date) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportCounts(ctx context.Context, from, to businessday.Date) (*bytes.Buffer, string, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, "", ErrExportRange
	}
	var days []businessday.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
		if len(days) > ExportMaxDays {
			return nil, "", ErrExportRange
		}
	}

	// 1. 查询数据
	shelters, err := s.repo.Shelter.List(ctx)
	if err != nil {
		s.logger.Error("查询收容所失败", zap.Error(err))
		return nil, "", err
	}
	counts, err := s.repo.Count.ListRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询人数失败", zap.Error(err))
		return nil, "", err
	}

	type key struct {
		shelterID uint
		day       businessday.Date
	}
	type cellPair struct {
		person, bed *int
	}
	index := make(map[key]cellPair, len(counts))
	for _, c := range counts {
		index[key{c.ShelterID, c.Day}] = cellPair{c.PersonCount, c.BedCount}
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "人数统计"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 10)
	lastCol := colName(2 + 2*len(days))
	f.SetColWidth(sheetName, colName(3), lastCol, 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头两行：日期（合并两列） / 人数 空床
	f.SetCellValue(sheetName, cell("A", 1), "收容所")
	f.SetCellValue(sheetName, cell("B", 1), "容量")
	f.MergeCell(sheetName, cell("A", 1), cell("A", 2))
	f.MergeCell(sheetName, cell("B", 1), cell("B", 2))
	for i, d := range days {
		personCol, bedCol := colName(3+2*i), colName(4+2*i)
		f.SetCellValue(sheetName, cell(personCol, 1), d.String())
		f.MergeCell(sheetName, cell(personCol, 1), cell(bedCol, 1))
		f.SetCellValue(sheetName, cell(personCol, 2), "人数")
		f.SetCellValue(sheetName, cell(bedCol, 2), "空床")
	}
	f.SetCellStyle(sheetName, "A1", cell(lastCol, 2), headerStyle)

	// 数据行
	row := 3
	for _, sh := range shelters {
		f.SetCellValue(sheetName, cell("A", row), sh.Name)
		f.SetCellValue(sheetName, cell("B", row), sh.Capacity)
		for i, d := range days {
			pair, ok := index[key{sh.ID, d}]
			if !ok {
				continue
			}
			if pair.person != nil {
				f.SetCellValue(sheetName, cell(colName(3+2*i), row), *pair.person)
			}
			if pair.bed != nil {
				f.SetCellValue(sheetName, cell(colName(4+2*i), row), *pair.bed)
			}
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("counts_%s_%s.xlsx", from.Compact(), to.Compact())
	return buf, filename, nil
}

// colName 列号（1 起）转列名
func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

// cell 拼接单元格坐标
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
