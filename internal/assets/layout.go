package assets

import "path"

// Site-relative asset locations.
const (
	ResourcesDir = "ресурси"
	CoreDir      = ResourcesDir + "/ядро"
	ThemeDir     = ResourcesDir + "/вигляд"

	HighlightCSS = CoreDir + "/highlight.css"
	CoreJS       = CoreDir + "/core.js"
	ThemeCSS     = ThemeDir + "/theme.css"
	ThemeJS      = ThemeDir + "/theme.js"
	FaviconICO   = ThemeDir + "/favicon.ico"
	FaviconPNG   = ThemeDir + "/favicon.png"
)

// Theme layout.
const (
	ThemeStaticDir = "static"
	ThemeSassFile  = "theme.scss"
)

// Fixed asset lists linked from every page, in order.
var (
	HeadStyles  = []string{HighlightCSS, ThemeCSS}
	HeadScripts = []string{}
	BodyScripts = []string{CoreJS, ThemeJS}
)

// IsResource reports whether a site-relative path lies in the reserved resources subtree.
func IsResource(rel string) bool {
	return rel == ResourcesDir || len(rel) > len(ResourcesDir) && rel[:len(ResourcesDir)+1] == ResourcesDir+"/"
}

func themeSassOutput() string {
	return path.Join(ThemeDir, ThemeSassFile)
}
