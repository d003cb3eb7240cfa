package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestCSSInjection_InjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		html        string
		stylesheets []string
		want        string
	}{
		{
			name:        "before closing head",
			html:        "<html><head><title>x</title></head><body></body></html>",
			stylesheets: []string{"p{}"},
			want:        "<html><head><title>x</title><style>\np{}\n</style>\n</head><body></body></html>",
		},
		{
			name:        "uppercase head",
			html:        "<HTML><HEAD></HEAD></HTML>",
			stylesheets: []string{"p{}"},
			want:        "<HTML><HEAD><style>\np{}\n</style>\n</HEAD></HTML>",
		},
		{
			name:        "after body when no head",
			html:        `<body class="x"><p>a</p></body>`,
			stylesheets: []string{"p{}"},
			want:        "<body class=\"x\"><style>\np{}\n</style>\n<p>a</p></body>",
		},
		{
			name:        "prepended to fragment",
			html:        "<p>a</p>",
			stylesheets: []string{"p{}"},
			want:        "<style>\np{}\n</style>\n<p>a</p>",
		},
		{
			name:        "several sheets in order, blanks skipped",
			html:        "<p>a</p>",
			stylesheets: []string{"a{}", "  ", "b{}"},
			want:        "<style>\na{}\nb{}\n</style>\n<p>a</p>",
		},
		{
			name:        "no sheets",
			html:        "<p>a</p>",
			stylesheets: nil,
			want:        "<p>a</p>",
		},
		{
			name:        "closing style tag escaped",
			html:        "<p>a</p>",
			stylesheets: []string{"p{}</style><script>x</script>"},
			want:        "<style>\np{}<\\/style><script>x<\\/script>\n</style>\n<p>a</p>",
		},
	}

	inj := &CSSInjection{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := inj.InjectCSS(context.Background(), tt.html, tt.stylesheets...); got != tt.want {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSSInjection_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inj := &CSSInjection{}
	if got := inj.InjectCSS(ctx, "<p>a</p>", "p{}"); strings.Contains(got, "<style>") {
		t.Errorf("InjectCSS(cancelled) = %q, want unchanged", got)
	}
}
