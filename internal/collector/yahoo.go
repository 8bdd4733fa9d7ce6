package collector

const yahooHeadlineURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// NewYahooCollector Yahoo Finance 个股 headline feed，按 ticker 查询
func NewYahooCollector(opts Options) *FeedCollector {
	return &FeedCollector{
		source:   SourceYahoo,
		name:     "yahoo",
		endpoint: opts.endpoint(yahooHeadlineURL),
		format:   RFC822Any,
		layout:   DateLayout,
		language: LanguageForeign,
		opts:     opts,
	}
}
