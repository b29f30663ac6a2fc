package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
)

// ErrIncompleteInput 渲染所需字段缺失
var ErrIncompleteInput = errors.New("证书信息不完整")

// Input 单张证书的渲染输入
type Input struct {
	Participant *model.Participant
	Course      *model.Course
	Template    *Template
}

// DocumentRenderer 单张证书渲染接口，批量打包依赖此接口
type DocumentRenderer interface {
	Render(in Input) ([]byte, error)
}

// Renderer 基于 fpdf 的证书渲染器
type Renderer struct {
	now func() time.Time
}

// RendererOption 渲染器选项
type RendererOption func(*Renderer)

// WithClock 注入时钟，签发日期取自该时钟
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer 创建渲染器
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// A4 纵向，单位 mm
const (
	pageWidth    = 210.0
	marginX      = 20.0
	contentWidth = pageWidth - 2*marginX
)

// Render 生成单页 A4 证书
func (r *Renderer) Render(in Input) ([]byte, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	p, c, t := in.Participant, in.Course, in.Template
	issued := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, 20, marginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(issued)
	pdf.SetModificationDate(issued)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(t.Title, true)
	pdf.SetAuthor(t.OrganizationName, true)
	pdf.SetCreator("sustenta", false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// 边框
	pr, pg, pb := t.Colors.Primary.bytes()
	sr, sg, sb := t.Colors.Secondary.bytes()
	pdf.SetDrawColor(pr, pg, pb)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageWidth-20, 277, "D")
	pdf.SetDrawColor(sr, sg, sb)
	pdf.SetLineWidth(0.4)
	pdf.Rect(13, 13, pageWidth-26, 271, "D")

	line := func(text, style string, size float64, color RGB, height float64) {
		cr, cg, cb := color.bytes()
		pdf.SetTextColor(cr, cg, cb)
		pdf.SetFont("Helvetica", style, size)
		pdf.SetX(marginX)
		pdf.MultiCell(contentWidth, height, tr(text), "", "C", false)
	}

	pdf.SetY(40)
	line(t.Title, "B", t.FontSizes.Title, t.Colors.Primary, t.FontSizes.Title*0.5)
	if t.Subtitle != "" {
		pdf.Ln(2)
		line(t.Subtitle, "", t.FontSizes.Subtitle, t.Colors.Secondary, t.FontSizes.Subtitle*0.5)
	}

	pdf.Ln(14)
	line("certifica que", "I", t.FontSizes.Body, t.Colors.Text, 8)
	pdf.Ln(6)
	line(strings.ToUpper(p.Name), "B", t.FontSizes.Name, t.Colors.Primary, t.FontSizes.Name*0.5)
	pdf.Ln(2)
	line("RUT: "+p.NationalID, "", t.FontSizes.Body, t.Colors.Text, 8)

	pdf.Ln(8)
	line("ha completado satisfactoriamente el curso", "", t.FontSizes.Body, t.Colors.Text, 8)
	pdf.Ln(2)
	line(fmt.Sprintf("“%s”", c.Name), "B", t.FontSizes.Subtitle, t.Colors.Primary, 9)
	pdf.Ln(4)
	line("Código: "+c.Code, "", t.FontSizes.Body, t.Colors.Text, 7)
	line(fmt.Sprintf("Duración: %d horas", c.DurationHours), "", t.FontSizes.Body, t.Colors.Text, 7)
	line("Modalidad: "+model.ModalityLabel(c.Modality), "", t.FontSizes.Body, t.Colors.Text, 7)
	if t.IncludeAttendance && p.Attendance != nil {
		line(fmt.Sprintf("Asistencia: %s%%", formatNumber(*p.Attendance)), "", t.FontSizes.Body, t.Colors.Text, 7)
	}
	if t.IncludeGrade && p.Grade != nil {
		line(fmt.Sprintf("Calificación: %.1f", *p.Grade), "", t.FontSizes.Body, t.Colors.Text, 7)
	}

	pdf.Ln(10)
	line("Emitido el "+SpanishDate(issued), "", t.FontSizes.Footer, t.Colors.Text, 6)

	// 签名区
	pdf.SetDrawColor(pr, pg, pb)
	pdf.SetLineWidth(0.3)
	pdf.Line(pageWidth/2-35, 235, pageWidth/2+35, 235)
	pdf.SetY(238)
	if t.SignatureName != "" {
		line(t.SignatureName, "B", t.FontSizes.Footer, t.Colors.Text, 5)
	}
	line(t.SignatureRole, "", t.FontSizes.Footer, t.Colors.Text, 5)
	line(t.OrganizationName, "", t.FontSizes.Footer, t.Colors.Secondary, 5)

	if pdf.Err() {
		return nil, fmt.Errorf("生成 PDF 失败: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("输出 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func checkInput(in Input) error {
	if in.Participant == nil || in.Course == nil || in.Template == nil {
		return ErrIncompleteInput
	}
	var missing []string
	if strings.TrimSpace(in.Participant.Name) == "" {
		missing = append(missing, "participant.name")
	}
	if strings.TrimSpace(in.Participant.NationalID) == "" {
		missing = append(missing, "participant.national_id")
	}
	if strings.TrimSpace(in.Course.Name) == "" {
		missing = append(missing, "course.name")
	}
	if strings.TrimSpace(in.Course.Code) == "" {
		missing = append(missing, "course.code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteInput, strings.Join(missing, ", "))
	}
	return in.Template.Validate()
}

// formatNumber 整数不带小数，否则保留一位
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// SpanishDate 西班牙语长日期，如 "18 de septiembre de 2025"
func SpanishDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
