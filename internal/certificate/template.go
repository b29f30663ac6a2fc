// Package certificate 生成学员结业证书（PDF）并打包批量下载（ZIP）。
package certificate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 证书版式
const (
	LayoutClassic = "classic"
	LayoutModern  = "modern"
	LayoutElegant = "elegant"
)

var (
	ErrUnknownTemplate = errors.New("证书模板不存在")
	ErrInvalidTemplate = errors.New("证书模板参数无效")
)

// RGB 归一化颜色，各分量取值 0–1
type RGB [3]float64

// bytes 转换为 0–255 整数分量
func (c RGB) bytes() (int, int, int) {
	conv := func(v float64) int { return int(v*255 + 0.5) }
	return conv(c[0]), conv(c[1]), conv(c[2])
}

// Colors 证书配色
type Colors struct {
	Primary   RGB `json:"primary"   validate:"dive,gte=0,lte=1"`
	Secondary RGB `json:"secondary" validate:"dive,gte=0,lte=1"`
	Text      RGB `json:"text"      validate:"dive,gte=0,lte=1"`
}

// FontSizes 各文字角色的字号（pt）
type FontSizes struct {
	Title    float64 `json:"title"    validate:"gt=0,lte=72"`
	Subtitle float64 `json:"subtitle" validate:"gt=0,lte=72"`
	Name     float64 `json:"name"     validate:"gt=0,lte=72"`
	Body     float64 `json:"body"     validate:"gt=0,lte=72"`
	Footer   float64 `json:"footer"   validate:"gt=0,lte=72"`
}

// Template 证书模板
// 三种内置模板只在配色、字号和文案上不同，绘制流程一致
type Template struct {
	Name              string    `json:"name"               validate:"required"`
	Title             string    `json:"title"              validate:"required"`
	Subtitle          string    `json:"subtitle,omitempty"`
	Colors            Colors    `json:"colors"`
	FontSizes         FontSizes `json:"font_sizes"`
	Layout            string    `json:"layout"             validate:"oneof=classic modern elegant"`
	IncludeGrade      bool      `json:"include_grade"`
	IncludeAttendance bool      `json:"include_attendance"`
	OrganizationName  string    `json:"organization_name"  validate:"required"`
	SignatureName     string    `json:"signature_name,omitempty"`
	SignatureRole     string    `json:"signature_role"     validate:"required"`
}

var validate = validator.New()

// Validate 校验模板参数
func (t *Template) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
			return fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return nil
}

// WithOrganization 返回覆盖了机构与签名信息的模板副本；空值不覆盖
func (t Template) WithOrganization(org, signatureName, signatureRole string) Template {
	if org != "" {
		t.OrganizationName = org
	}
	if signatureName != "" {
		t.SignatureName = signatureName
	}
	if signatureRole != "" {
		t.SignatureRole = signatureRole
	}
	return t
}

var builtinTemplates = map[string]Template{
	LayoutClassic: {
		Name:     LayoutClassic,
		Title:    "CERTIFICADO DE APROBACIÓN",
		Subtitle: "Programa de Capacitación",
		Colors: Colors{
			Primary:   RGB{0.12, 0.23, 0.54},
			Secondary: RGB{0.85, 0.65, 0.13},
			Text:      RGB{0.1, 0.1, 0.1},
		},
		FontSizes:         FontSizes{Title: 28, Subtitle: 16, Name: 24, Body: 13, Footer: 10},
		Layout:            LayoutClassic,
		IncludeGrade:      true,
		IncludeAttendance: true,
		OrganizationName:  "Sustenta Capacitación",
		SignatureRole:     "Director Académico",
	},
	LayoutModern: {
		Name:  LayoutModern,
		Title: "Certificado",
		Colors: Colors{
			Primary:   RGB{0.05, 0.58, 0.53},
			Secondary: RGB{0.2, 0.2, 0.2},
			Text:      RGB{0.22, 0.25, 0.32},
		},
		FontSizes:         FontSizes{Title: 32, Subtitle: 14, Name: 26, Body: 12, Footer: 9},
		Layout:            LayoutModern,
		IncludeGrade:      true,
		IncludeAttendance: true,
		OrganizationName:  "Sustenta Capacitación",
		SignatureRole:     "Coordinación de Capacitación",
	},
	LayoutElegant: {
		Name:     LayoutElegant,
		Title:    "Certificado de Participación",
		Subtitle: "Reconocimiento Académico",
		Colors: Colors{
			Primary:   RGB{0.36, 0.16, 0.36},
			Secondary: RGB{0.75, 0.6, 0.3},
			Text:      RGB{0.15, 0.12, 0.15},
		},
		FontSizes:         FontSizes{Title: 30, Subtitle: 15, Name: 25, Body: 12, Footer: 10},
		Layout:            LayoutElegant,
		IncludeGrade:      false,
		IncludeAttendance: true,
		OrganizationName:  "Sustenta Capacitación",
		SignatureRole:     "Dirección General",
	},
}

// TemplateByName 返回内置模板的副本
func TemplateByName(name string) (Template, error) {
	t, ok := builtinTemplates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Templates 列出全部内置模板，按名称排序
func Templates() []Template {
	list := make([]Template, 0, len(builtinTemplates))
	for _, t := range builtinTemplates {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
