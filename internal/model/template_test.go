package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPlaceholders(t *testing.T) {
	ctx := &WorktreeContext{
		Branch:       "feature-x",
		WorktreePath: "/tmp/wt",
		SourcePath:   "/tmp/repo",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "branch and worktree path",
			template: "echo {branch} {worktree_path}",
			want:     "echo feature-x /tmp/wt",
		},
		{
			name:     "source path",
			template: "cp {source_path}/.env {worktree_path}/.env",
			want:     "cp /tmp/repo/.env /tmp/wt/.env",
		},
		{
			name:     "unrecognized placeholder left verbatim",
			template: "echo {branch} {container_id}",
			want:     "echo feature-x {container_id}",
		},
		{
			name:     "no placeholders",
			template: "make setup",
			want:     "make setup",
		},
		{
			name:     "repeated placeholder",
			template: "{branch}-{branch}",
			want:     "feature-x-feature-x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPlaceholders(tt.template, ctx))
		})
	}
}
