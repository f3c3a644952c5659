package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("admin@outcom.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}

func TestEntryNames(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "report.pdf", false},
		{"unicode", "résumé.docx", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"traversal", "..", true},
		{"control", "bad\x00name", true},
		{"too long", strings.Repeat("x", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FileName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.EqualError(t, FolderName(""), "folder name cannot be empty")
}

func TestLogicalPath(t *testing.T) {
	assert.NoError(t, LogicalPath(""))
	assert.NoError(t, LogicalPath("ClientA"))
	assert.NoError(t, LogicalPath("ClientA/2024/invoices"))

	assert.Error(t, LogicalPath("ClientA//x"))
	assert.Error(t, LogicalPath("ClientA/../etc"))
	assert.Error(t, LogicalPath("./ClientA"))
	assert.Error(t, LogicalPath(`ClientA\x`))
	assert.Error(t, LogicalPath(strings.Repeat("a", 501)))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "ClientA/docs", NormalizePath(" /ClientA/docs/ "))
	assert.Equal(t, "", NormalizePath("/"))
}

func TestContentType(t *testing.T) {
	assert.NoError(t, ContentType(""))
	assert.NoError(t, ContentType("application/pdf"))
	assert.Error(t, ContentType("///"))
}

func TestBatchIDs(t *testing.T) {
	assert.Error(t, BatchIDs(0))
	assert.NoError(t, BatchIDs(3))
	assert.Error(t, BatchIDs(501))
}
