// Package fsops implements the folder management operations used by
// the library view: listing, tree walks, bulk delete and move.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Folder is one directory entry.
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// FolderPage is one page of a directory's immediate subdirectories.
type FolderPage struct {
	Items      []Folder `json:"items"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}

// TreeNode is one directory in a recursive tree.
type TreeNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Children []TreeNode `json:"children,omitempty"`
}

// ImageFile is one image found directly inside a directory.
type ImageFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// OpResult reports the outcome of one item in a bulk operation.
type OpResult struct {
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// FolderChildren lists the immediate subdirectories of dir, sorted by
// name, one page at a time.
func FolderChildren(dir string, page, pageSize int) (*FolderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var all []Folder
	for _, e := range entries {
		if e.IsDir() {
			all = append(all, Folder{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &FolderPage{
		Items:      all[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// FolderTree walks dir recursively and returns its directory tree.
// Subtrees that fail to read are returned without children rather
// than failing the whole walk.
func FolderTree(dir string) (*TreeNode, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	node := &TreeNode{Name: filepath.Base(dir), Path: dir}
	node.Children = treeChildren(dir)
	return node, nil
}

func treeChildren(dir string) []TreeNode {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var children []TreeNode
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		childPath := filepath.Join(dir, e.Name())
		children = append(children, TreeNode{
			Name:     e.Name(),
			Path:     childPath,
			Children: treeChildren(childPath),
		})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

// ImageFiles lists image files directly inside dir (no recursion),
// sorted by name.
func ImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var files []ImageFile
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// DeleteFolders removes each path and its contents, reporting success
// or failure per item. One failed item does not stop the rest.
func DeleteFolders(paths []string) []OpResult {
	results := make([]OpResult, 0, len(paths))
	for _, p := range paths {
		res := OpResult{Path: p, OK: true}
		if _, err := os.Stat(p); err != nil {
			res.OK = false
			res.Error = err.Error()
		} else if err := os.RemoveAll(p); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// MoveFolders moves each path into target, reporting per item. A
// missing target directory fails the whole call; an item whose name
// already exists under target fails only that item.
func MoveFolders(paths []string, target string) ([]OpResult, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat target: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target is not a directory: %s", target)
	}

	results := make([]OpResult, 0, len(paths))
	for _, p := range paths {
		res := OpResult{Path: p, OK: true}
		dest := filepath.Join(target, filepath.Base(p))
		if _, err := os.Stat(dest); err == nil {
			res.OK = false
			res.Error = fmt.Sprintf("already exists: %s", dest)
		} else if err := os.Rename(p, dest); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}
