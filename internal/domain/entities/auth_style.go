package entities

// AuthStyle names the visual style of a social or enterprise button
type AuthStyle string

// DefaultAuthStyle is used for strategies without a dedicated style
const DefaultAuthStyle AuthStyle = "Lock.Theme.AuthStyle"

var strategyStyles = map[string]AuthStyle{
	"apple":                "Lock.Theme.AuthStyle.Apple",
	"amazon":               "Lock.Theme.AuthStyle.Amazon",
	"aol":                  "Lock.Theme.AuthStyle.AOL",
	"bitbucket":            "Lock.Theme.AuthStyle.BitBucket",
	"dropbox":              "Lock.Theme.AuthStyle.Dropbox",
	"yahoo":                "Lock.Theme.AuthStyle.Yahoo",
	"linkedin":             "Lock.Theme.AuthStyle.LinkedIn",
	"google-oauth2":        "Lock.Theme.AuthStyle.GoogleOAuth2",
	"twitter":              "Lock.Theme.AuthStyle.Twitter",
	"facebook":             "Lock.Theme.AuthStyle.Facebook",
	"box":                  "Lock.Theme.AuthStyle.Box",
	"evernote":             "Lock.Theme.AuthStyle.Evernote",
	"evernote-sandbox":     "Lock.Theme.AuthStyle.EvernoteSandbox",
	"exact":                "Lock.Theme.AuthStyle.Exact",
	"github":               "Lock.Theme.AuthStyle.GitHub",
	"instagram":            "Lock.Theme.AuthStyle.Instagram",
	"miicard":              "Lock.Theme.AuthStyle.MiiCard",
	"paypal":               "Lock.Theme.AuthStyle.Paypal",
	"paypal-sandbox":       "Lock.Theme.AuthStyle.PaypalSandbox",
	"salesforce":           "Lock.Theme.AuthStyle.Salesforce",
	"salesforce-community": "Lock.Theme.AuthStyle.SalesforceCommunity",
	"salesforce-sandbox":   "Lock.Theme.AuthStyle.SalesforceSandbox",
	"soundcloud":           "Lock.Theme.AuthStyle.SoundCloud",
	"windowslive":          "Lock.Theme.AuthStyle.WindowsLive",
	"yammer":               "Lock.Theme.AuthStyle.Yammer",
	"baidu":                "Lock.Theme.AuthStyle.Baidu",
	"fitbit":               "Lock.Theme.AuthStyle.Fitbit",
	"planningcenter":       "Lock.Theme.AuthStyle.PlanningCenter",
	"renren":               "Lock.Theme.AuthStyle.RenRen",
	"thecity":              "Lock.Theme.AuthStyle.TheCity",
	"thecity-sandbox":      "Lock.Theme.AuthStyle.TheCitySandbox",
	"thirtysevensignals":   "Lock.Theme.AuthStyle.ThirtySevenSignals",
	"vkontakte":            "Lock.Theme.AuthStyle.Vkontakte",
	"weibo":                "Lock.Theme.AuthStyle.Weibo",
	"wordpress":            "Lock.Theme.AuthStyle.Wordpress",
	"yandex":               "Lock.Theme.AuthStyle.Yandex",
	"shopify":              "Lock.Theme.AuthStyle.Shopify",
	"dwolla":               "Lock.Theme.AuthStyle.Dwolla",
}

// StyleForStrategy returns the default style of a strategy
func StyleForStrategy(strategy string) AuthStyle {
	if style, ok := strategyStyles[strategy]; ok {
		return style
	}
	return DefaultAuthStyle
}
