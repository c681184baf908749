package bdispatch

import (
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

// FolderOptions configure how a folder is served.
type FolderOptions struct {
	FileOptions

	// AllowHidden serves files and folders whose name starts with a dot.
	AllowHidden bool
}

// FolderHandler serves the files below Root. The path segments routing has not consumed name the file.
type FolderHandler struct {
	Root    string
	Options FolderOptions
}

// NewFolderHandler creates a handler that serves the files below root.
func NewFolderHandler(root string, opts FolderOptions) *FolderHandler {
	return &FolderHandler{Root: root, Options: opts}
}

// Handle implements [Handler].
func (h *FolderHandler) Handle(c *Context, env *Env) error {
	rel, err := safeRel(env.Rest(), h.Options.AllowHidden)
	if err != nil {
		return err
	}

	return serveFile(c, path.Join(h.Root, rel), h.Options.FileOptions)
}

func (*FolderHandler) isTarget() {}

// safeRel joins the segments into a relative path that stays below the folder it is joined onto.
func safeRel(segs []string, allowHidden bool) (string, error) {
	rel := path.Clean(strings.Join(segs, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", NewError(CodeForbidden, errors.Newf("path %q escapes the folder", rel))
	}

	if allowHidden {
		return rel, nil
	}

	for _, part := range strings.Split(rel, "/") {
		if part != "." && strings.HasPrefix(part, ".") {
			return "", NewError(CodeForbidden, errors.Newf("path %q is hidden", rel))
		}
	}

	return rel, nil
}
