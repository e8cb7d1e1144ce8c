package config

// SelectorConfig overrides the CSS selectors used to read the result listing.
// Empty fields keep the built-in selectors.
type SelectorConfig struct {
	// SingleCore matches the single-core score of each result row.
	SingleCore string `yaml:"singleCore,omitempty"`

	// MultiCore matches the multi-core score of each result row.
	MultiCore string `yaml:"multiCore,omitempty"`

	// Pagination matches the link holding the number of the last page.
	Pagination string `yaml:"pagination,omitempty"`
}

// SourceConfig describes how to reach and read the remote listing.
type SourceConfig struct {
	// BaseURL overrides the search endpoint.
	BaseURL string `yaml:"baseURL,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is sent as the Cookie header when set.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Selectors overrides the listing selectors.
	Selectors SelectorConfig `yaml:"selectors,omitempty"`
}

// File represents the structure of the .benchdist configuration file.
type File struct {
	// Source configures the remote listing.
	Source SourceConfig `yaml:"source,omitempty"`

	// Aliases maps identifiers to display names used in reports.
	// Identifiers are matched after normalization, so "Intel i7-3770" also
	// names "intel i7 3770".
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// NewFile returns an empty File with its maps allocated.
func NewFile() *File {
	return &File{
		Source:  SourceConfig{Headers: make(map[string]string)},
		Aliases: make(map[string]string),
	}
}

// RequestHeaders returns the headers to send with every request,
// including the Cookie header when a cookie is configured.
func (f *File) RequestHeaders() map[string]string {
	headers := make(map[string]string, len(f.Source.Headers)+1)
	for k, v := range f.Source.Headers {
		headers[k] = v
	}
	if f.Source.Cookie != "" {
		headers["Cookie"] = f.Source.Cookie
	}
	return headers
}
