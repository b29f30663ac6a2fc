package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
)

var (
	ErrNoApprovedParticipants = errors.New("没有已通过的学员，无法生成证书")
	ErrNothingRendered        = errors.New("所有证书均生成失败")
)

// ProgressFunc 批量生成进度回调，每处理完一名学员调用一次
type ProgressFunc func(done, total int, name string)

// Skipped 渲染失败被跳过的学员
type Skipped struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Reason        string `json:"reason"`
}

// BatchResult 批量打包结果
type BatchResult struct {
	Archive  []byte    `json:"-"`
	FileName string    `json:"file_name"`
	Entries  []string  `json:"entries"`
	Skipped  []Skipped `json:"skipped,omitempty"`
}

// Packager 批量证书打包器
type Packager struct {
	renderer DocumentRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewPackager 创建打包器
func NewPackager(renderer DocumentRenderer, logger *zap.Logger) *Packager {
	return &Packager{renderer: renderer, logger: logger, now: time.Now}
}

// Package 为课程中已通过的学员逐一生成证书并打包为 ZIP
//   - 没有已通过学员时返回 ErrNoApprovedParticipants
//   - 单个学员渲染失败只记录日志并跳过
//   - 全部失败时返回 ErrNothingRendered
func (p *Packager) Package(ctx context.Context, course *model.Course, participants []model.Participant, tpl *Template, progress ProgressFunc) (*BatchResult, error) {
	approved := make([]*model.Participant, 0, len(participants))
	for i := range participants {
		if participants[i].IsApproved() {
			approved = append(approved, &participants[i])
		}
	}
	if len(approved) == 0 {
		return nil, ErrNoApprovedParticipants
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newNameSet()
	result := &BatchResult{FileName: ArchiveName(course)}
	modified := p.now()

	for i, participant := range approved {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return nil, err
		}

		pdf, err := p.renderer.Render(Input{Participant: participant, Course: course, Template: tpl})
		if err != nil {
			p.logger.Warn("证书生成失败，已跳过",
				zap.String("participant_id", participant.ParticipantID),
				zap.String("course_id", course.CourseID),
				zap.Error(err),
			)
			result.Skipped = append(result.Skipped, Skipped{
				ParticipantID: participant.ParticipantID,
				Name:          participant.Name,
				Reason:        err.Error(),
			})
		} else {
			entry := names.claim(EntryName(participant.Name, participant.NationalID))
			w, err := zw.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Deflate, Modified: modified})
			if err != nil {
				_ = zw.Close()
				return nil, fmt.Errorf("写入压缩包失败: %w", err)
			}
			if _, err := w.Write(pdf); err != nil {
				_ = zw.Close()
				return nil, fmt.Errorf("写入压缩包失败: %w", err)
			}
			result.Entries = append(result.Entries, entry)
		}

		if progress != nil {
			progress(i+1, len(approved), participant.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("关闭压缩包失败: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, ErrNothingRendered
	}

	p.logger.Info("批量证书已打包",
		zap.String("course_id", course.CourseID),
		zap.Int("rendered", len(result.Entries)),
		zap.Int("skipped", len(result.Skipped)),
	)
	result.Archive = buf.Bytes()
	return result, nil
}

// EntryName 由姓名与证件号生成压缩包内文件名
func EntryName(name, nationalID string) string {
	return SanitizeFileName(name+"_"+nationalID) + ".pdf"
}

// ArchiveName 压缩包文件名
func ArchiveName(course *model.Course) string {
	return "certificados_" + SanitizeFileName(course.Code) + ".zip"
}

// SanitizeFileName 去除重音符号，空白替换为下划线，
// 只保留字母数字与 . _ -
func SanitizeFileName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(folded) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-'):
			b.WriteRune(r)
		default:
			continue
		}
		lastUnderscore = false
	}

	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "certificado"
	}
	return out
}

// nameSet 保证压缩包内文件名唯一，重名时追加 _2、_3 …
type nameSet map[string]bool

func newNameSet() nameSet { return nameSet{} }

func (s nameSet) claim(name string) string {
	if !s[name] {
		s[name] = true
		return name
	}
	base := strings.TrimSuffix(name, ".pdf")
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d.pdf", base, n)
		if !s[candidate] {
			s[candidate] = true
			return candidate
		}
	}
}
