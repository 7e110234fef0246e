package timer

import (
	"fmt"
	"io"
	"strings"
)

// ShowTimers 按插入顺序输出所有定时器, 仅供人阅读
func (r *Registry) ShowTimers(w io.Writer) error {
	return r.show(w, r.order)
}

// ShowMatching 只输出名字以prefix开头的定时器, 仍按插入顺序
func (r *Registry) ShowMatching(w io.Writer, prefix string) error {
	matched := make(map[string]struct{})
	for _, name := range r.Match(prefix) {
		matched[name] = struct{}{}
	}
	names := make([]string, 0, len(matched))
	for _, name := range r.order {
		if _, ok := matched[name]; ok {
			names = append(names, name)
		}
	}
	return r.show(w, names)
}

func (r *Registry) show(w io.Writer, names []string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "registry %s: %d timers\n", r.id, len(names))
	for _, name := range names {
		if t, ok := r.lookup(name); ok {
			sb.WriteString("  ")
			sb.WriteString(t.String())
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
