package welcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Parallel()
	data := TemplateData{
		UserID:      "123",
		Username:    "hazel",
		ServerName:  "Testers",
		MemberCount: 42,
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "all placeholders",
			template: "Hi {user} ({username}), welcome to {server}, member #{memberCount}!",
			want:     "Hi <@123> (hazel), welcome to Testers, member #42!",
		},
		{
			name:     "repeated placeholder",
			template: "{username} {username}",
			want:     "hazel hazel",
		},
		{
			name:     "unknown placeholders pass through",
			template: "Hello {user}, enjoy {unknown} and {channel}",
			want:     "Hello <@123>, enjoy {unknown} and {channel}",
		},
		{
			name:     "no placeholders",
			template: "Just a plain message",
			want:     "Just a plain message",
		},
		{
			name:     "default welcome template",
			template: DefaultWelcomeTemplate,
			want:     "Welcome to Testers, <@123>! You are member #42.",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Render(tt.template, data))
		})
	}
}
