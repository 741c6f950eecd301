package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ai-resume-analyst/internal/model"

	"gopkg.in/yaml.v3"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// ManifestEntry 描述一份简历文件对应的员工身份。
type ManifestEntry struct {
	File       string `yaml:"file"`
	Email      string `yaml:"email"`
	Name       string `yaml:"name"`
	Role       string `yaml:"role"`
	EmployeeID string `yaml:"employee_id"`
}

type manifestFile struct {
	Employees []ManifestEntry `yaml:"employees"`
}

// IdentityResolver 为导入的简历确定员工身份：清单优先，其次正文中的第一个邮箱，最后按文件名生成。
type IdentityResolver struct {
	byFile        map[string]ManifestEntry
	defaultDomain string
}

// NewIdentityResolver 创建解析器，manifestPath 为空时只使用正文与文件名。
func NewIdentityResolver(manifestPath, defaultDomain string) (*IdentityResolver, error) {
	r := &IdentityResolver{byFile: map[string]ManifestEntry{}, defaultDomain: defaultDomain}
	if manifestPath == "" {
		return r, nil
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for _, e := range mf.Employees {
		if e.File == "" {
			continue
		}
		r.byFile[filepath.Base(e.File)] = e
	}
	return r, nil
}

// Resolve 返回文件对应的员工。
func (r *IdentityResolver) Resolve(fileName, text string) model.Employee {
	base := filepath.Base(fileName)
	stem := fileStem(base)
	emp := model.Employee{Name: stem}

	if e, ok := r.byFile[base]; ok {
		emp.Email = strings.ToLower(strings.TrimSpace(e.Email))
		if e.Name != "" {
			emp.Name = e.Name
		}
		emp.Role = e.Role
		if e.EmployeeID != "" {
			id := e.EmployeeID
			emp.EmployeeID = &id
		}
	}
	if emp.Email == "" {
		emp.Email = strings.ToLower(emailPattern.FindString(text))
	}
	if emp.Email == "" {
		emp.Email = fmt.Sprintf("%s@%s", slug(stem), r.defaultDomain)
	}
	return emp
}

func fileStem(base string) string {
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '/' || r == '\\'
	}), "-")
}
