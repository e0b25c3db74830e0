package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CacheGroup is a Find My cache directory and the key store that unlocks it.
type CacheGroup struct {
	// Name is the cache directory name, also the default target identifier
	Name string

	// Label is the short group name used in reports
	Label string

	// KeyStoreFile is the key store file name
	KeyStoreFile string

	// CacheFiles are the cache file names known to live in the group
	CacheFiles []string
}

// DefaultGroups returns the FMIP and FMF cache groups
func DefaultGroups() []CacheGroup {
	return []CacheGroup{
		{
			Name:         "com.apple.findmy.fmipcore",
			Label:        "FMIP",
			KeyStoreFile: "FMIPDataManager.bplist",
			CacheFiles: []string{
				"SafeLocations.data",
				"Items.data",
				"Devices.data",
				"FamilyMembers.data",
				"ItemGroups.data",
				"Owner.data",
			},
		},
		{
			Name:         "com.apple.findmy.fmfcore",
			Label:        "FMF",
			KeyStoreFile: "FMFDataManager.bplist",
			CacheFiles:   []string{"FriendCacheData.data"},
		},
	}
}

// TargetMode selects how a cache file maps to a key store identifier
type TargetMode string

const (
	// TargetByGroup uses the cache group directory name
	TargetByGroup TargetMode = "group"

	// TargetByFile uses the cache file base name without extension
	TargetByFile TargetMode = "file"
)

// ParseTargetMode validates a target mode name
func ParseTargetMode(s string) (TargetMode, error) {
	switch TargetMode(strings.ToLower(strings.TrimSpace(s))) {
	case TargetByGroup, "":
		return TargetByGroup, nil
	case TargetByFile:
		return TargetByFile, nil
	default:
		return "", fmt.Errorf("unknown target mode %q (valid: group, file)", s)
	}
}

// TargetID derives the key store identifier of a cache file
func TargetID(mode TargetMode, groupName, path string) string {
	if mode == TargetByFile {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return groupName
}

// DiscoveredGroup is a cache group found on disk
type DiscoveredGroup struct {
	Group CacheGroup

	// Dir is the cache directory
	Dir string

	// KeyStorePath is empty when no key store file was found
	KeyStorePath string

	// Files are the cache files to process, known names first
	Files []string
}

// Discover looks for each group under root. Groups without cache files are
// skipped. The key store is looked up in root first, then in the group directory.
func Discover(root string, groups []CacheGroup) ([]DiscoveredGroup, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	var found []DiscoveredGroup
	for _, group := range groups {
		dir := filepath.Join(root, group.Name)
		files, err := groupFiles(dir, group.CacheFiles)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}

		found = append(found, DiscoveredGroup{
			Group:        group,
			Dir:          dir,
			KeyStorePath: findKeyStore(group.KeyStoreFile, root, dir),
			Files:        files,
		})
	}

	return found, nil
}

// groupFiles lists the known cache files that exist, then any other *.data file
func groupFiles(dir string, known []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			present[entry.Name()] = true
		}
	}

	var files []string
	seen := make(map[string]bool, len(known))
	for _, name := range known {
		seen[name] = true
		if present[name] {
			files = append(files, filepath.Join(dir, name))
		}
	}

	var extra []string
	for name := range present {
		if !seen[name] && strings.EqualFold(filepath.Ext(name), ".data") {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		files = append(files, filepath.Join(dir, name))
	}

	return files, nil
}

func findKeyStore(name string, dirs ...string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
