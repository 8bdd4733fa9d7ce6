package collector

const (
	googleRSSKoreanURL  = "https://news.google.com/rss/search?q=%s&hl=ko&gl=KR&ceid=KR:ko"
	googleRSSEnglishURL = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"
)

// NewGoogleRSSKoreanCollector 国内个股：韩语结果，无需翻译
func NewGoogleRSSKoreanCollector(opts Options) *FeedCollector {
	return &FeedCollector{
		source:   SourceGoogleRSS,
		name:     "google_rss_ko",
		endpoint: opts.endpoint(googleRSSKoreanURL),
		format:   RFC822Zone,
		layout:   DateLayout,
		language: LanguageNative,
		opts:     opts,
	}
}

// NewGoogleRSSEnglishCollector 海外个股：英语结果
func NewGoogleRSSEnglishCollector(opts Options) *FeedCollector {
	return &FeedCollector{
		source:   SourceGoogleRSS,
		name:     "google_rss_en",
		endpoint: opts.endpoint(googleRSSEnglishURL),
		format:   RFC822Zone,
		layout:   DateLayout,
		language: LanguageForeign,
		opts:     opts,
	}
}
