package collector

// CNBC 首页 Top News；其它栏目：
//   World News  https://www.cnbc.com/id/100727362/device/rss/rss.html
//   Finance     https://www.cnbc.com/id/10000664/device/rss/rss.html
//   Technology  https://www.cnbc.com/id/19854910/device/rss/rss.html
//   Markets     https://www.cnbc.com/id/10001147/device/rss/rss.html
const cnbcTopNewsURL = "https://www.cnbc.com/id/100003114/device/rss/rss.html"

// NewCNBCCollector 固定 feed，不使用查询词；日期保留到分钟
func NewCNBCCollector(opts Options) *FeedCollector {
	return &FeedCollector{
		source:   SourceCNBC,
		name:     "cnbc",
		endpoint: opts.endpoint(cnbcTopNewsURL),
		format:   RFC822Any,
		layout:   DateTimeLayout,
		language: LanguageForeign,
		opts:     opts,
	}
}
