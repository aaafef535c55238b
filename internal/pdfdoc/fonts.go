// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// cjkFonts lists TrueType fonts able to draw Chinese titles, in order of
// preference. Names are compared case-insensitively. Collections (.ttc) and
// CFF-based .otf files are left out since the renderer only loads .ttf.
var cjkFonts = []string{
	"simsun.ttf",
	"simhei.ttf",
	"simfang.ttf",
	"simkai.ttf",
	"msyh.ttf",
	"notosanscjksc-regular.ttf",
	"notosanssc-regular.ttf",
	"notoserifsc-regular.ttf",
	"droidsansfallbackfull.ttf",
	"droidsansfallback.ttf",
	"arial unicode.ttf",
	"arialuni.ttf",
}

// SystemFontDirs returns the font directories of the running platform.
func SystemFontDirs() []string {
	home, _ := os.UserHomeDir()
	return fontDirs(runtime.GOOS, os.Getenv, home)
}

func fontDirs(goos string, getenv func(string) string, home string) []string {
	var dirs []string
	switch goos {
	case "windows":
		win := getenv("WINDIR")
		if win == "" {
			win = `C:\Windows`
		}
		dirs = append(dirs, filepath.Join(win, "Fonts"))
		if local := getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
	case "darwin":
		dirs = append(dirs, "/System/Library/Fonts", "/Library/Fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	default:
		if data := getenv("XDG_DATA_HOME"); data != "" {
			dirs = append(dirs, filepath.Join(data, "fonts"))
		} else if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"))
		}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".fonts"))
		}
		dirs = append(dirs, "/usr/local/share/fonts", "/usr/share/fonts")
	}
	return dirs
}

// FindCJKFont searches dirs recursively and returns the most preferred
// CJK-capable TrueType font, or "" when none is installed. Unreadable
// directories are skipped.
func FindCJKFont(dirs []string) string {
	rank := make(map[string]int, len(cjkFonts))
	for i, n := range cjkFonts {
		rank[n] = i
	}

	best, bestRank := "", len(cjkFonts)
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if r, ok := rank[strings.ToLower(d.Name())]; ok && r < bestRank {
				best, bestRank = p, r
			}
			return nil
		})
		if bestRank == 0 {
			break
		}
	}
	return best
}
