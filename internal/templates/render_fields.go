package templates

import (
	"strconv"
	"strings"
)

// PageFields fills the page shell.
type PageFields struct {
	Title           string
	Head            string
	MetaDescription string
	Navigation      string
	Content         string
	Scripts         string
	PrevURL         string
	NextURL         string
	FaviconICO      string
	FaviconPNG      string
	Icon            string
	IconSize        int
	SearchURL       string
	Root            string
	GTag            string
}

// NavigationFields fills the navigation block.
type NavigationFields struct {
	LogoURL     string
	LogoImage   string
	LogoPNG     string
	Links       string
	FooterImage string
	FooterURL   string
	FooterText  string
}

// LinkFields fills a top-level link item or a submenu link item.
type LinkFields struct {
	Name   string
	URL    string
	Active bool
}

// SubmenuFields fills a submenu block.
type SubmenuFields struct {
	Name     string
	Items    string
	Expanded bool
}

// ActiveClass is the class token of the active navigation entry.
const ActiveClass = "active"

// RenderPage renders the page shell.
func (s *Set) RenderPage(f PageFields) string {
	return substitute(s.sources[KindPage],
		"{{PAGE_TITLE}}", f.Title,
		"{{PAGE_HEAD}}", f.Head,
		"{{PAGE_META_DESCRIPTION}}", f.MetaDescription,
		"{{PAGE_NAVIGATION}}", f.Navigation,
		"{{PAGE_CONTENT}}", f.Content,
		"{{PAGE_SCRIPTS}}", f.Scripts,
		"{{PAGE_PREV_BUTTON}}", PrevButton(f.PrevURL),
		"{{PAGE_NEXT_BUTTON}}", NextButton(f.NextURL),
		"{{PAGE_FAVICON_ICO}}", f.FaviconICO,
		"{{PAGE_FAVICON_PNG}}", f.FaviconPNG,
		"{{PAGE_ICON}}", f.Icon,
		"{{PAGE_ICON_SIZE}}", strconv.Itoa(f.IconSize),
		"{{PAGE_SEARCH_URL}}", f.SearchURL,
		"{{PAGE_ROOT}}", f.Root,
		"{{PAGE_GTAG}}", f.GTag,
	)
}

// RenderNavigation renders the navigation block.
func (s *Set) RenderNavigation(f NavigationFields) string {
	return substitute(s.sources[KindNavigation],
		"{{PAGE_NAVIGATION_LOGO_URL}}", f.LogoURL,
		"{{PAGE_NAVIGATION_LOGO_IMAGE}}", f.LogoImage,
		"{{PAGE_NAVIGATION_LOGO_IMAGE_PNG}}", f.LogoPNG,
		"{{PAGE_NAVIGATION_LINKS}}", f.Links,
		"{{PAGE_NAVIGATION_FOOTER_IMAGE}}", f.FooterImage,
		"{{PAGE_NAVIGATION_FOOTER_URL}}", f.FooterURL,
		"{{PAGE_NAVIGATION_FOOTER_TEXT}}", f.FooterText,
	)
}

// RenderLink renders a top-level link item.
func (s *Set) RenderLink(f LinkFields) string {
	return substitute(s.sources[KindNavigationLink],
		"{{PAGE_NAVIGATION_ITEM_LINK_NAME}}", f.Name,
		"{{PAGE_NAVIGATION_ITEM_LINK_URL}}", f.URL,
		"{{PAGE_NAVIGATION_ITEM_LINK_ACTIVE_CLASS}}", activeToken(f.Active),
	)
}

// RenderSubmenu renders a submenu block around its already rendered items.
func (s *Set) RenderSubmenu(f SubmenuFields) string {
	return substitute(s.sources[KindNavigationSubmenu],
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_NAME}}", f.Name,
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_ITEMS}}", f.Items,
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_EXPANDED}}", strconv.FormatBool(f.Expanded),
	)
}

// RenderSubmenuLink renders a link inside a submenu.
func (s *Set) RenderSubmenuLink(f LinkFields) string {
	return substitute(s.sources[KindSubmenuLink],
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_LINK_NAME}}", f.Name,
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_LINK_URL}}", f.URL,
		"{{PAGE_NAVIGATION_ITEM_SUBMENU_LINK_ACTIVE_CLASS}}", activeToken(f.Active),
	)
}

// RenderSearch renders the search payload host page. payload must already be escaped.
func (s *Set) RenderSearch(payload string) string {
	return substitute(s.sources[KindSearch], "{{SEARCH_INDEX}}", payload)
}

// PrevButton returns the previous-page anchor, or "" when url is empty.
func PrevButton(url string) string {
	if url == "" {
		return ""
	}
	return `<a data-is-prev="true" href="` + url + `">Відступ</a>`
}

// NextButton returns the next-page anchor, or "" when url is empty.
func NextButton(url string) string {
	if url == "" {
		return ""
	}
	return `<a data-is-next="true" href="` + url + `">Наступ</a>`
}

func activeToken(active bool) string {
	if active {
		return ActiveClass
	}
	return ""
}

// substitute replaces all placeholders in one pass, so values are never re-scanned.
func substitute(tpl string, oldnew ...string) string {
	return strings.NewReplacer(oldnew...).Replace(tpl)
}
