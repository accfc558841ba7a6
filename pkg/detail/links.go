package detail

import (
	"fmt"
	"net/url"
	"strings"

	"tokenview/pkg/models"
)

const (
	EtherscanURL    = "https://etherscan.io/address/%s"
	ProtocolInfoURL = "https://info.uniswap.org/#/tokens/%s"
	TwitterURL      = "https://twitter.com/%s"
	AppTokenURL     = "https://app.uniswap.org/#/tokens/%s"
	TweetIntentURL  = "https://twitter.com/intent/tweet?text=%s"
)

// Resource is an external link rendered in the About section.
type Resource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResourceLinks lists Etherscan and protocol info for every token, then the
// homepage and Twitter links when the remote record has them.
func ResourceLinks(address string, remote models.RemoteDetail) []Resource {
	links := []Resource{
		{Name: "Etherscan", URL: fmt.Sprintf(EtherscanURL, address)},
		{Name: "Protocol info", URL: fmt.Sprintf(ProtocolInfoURL, address)},
	}
	if homepage := deref(remote.HomepageURL); homepage != "" {
		links = append(links, Resource{Name: "Website", URL: homepage})
	}
	if handle := strings.TrimPrefix(deref(remote.TwitterName), "@"); handle != "" {
		links = append(links, Resource{Name: "Twitter", URL: fmt.Sprintf(TwitterURL, handle)})
	}
	return links
}

// ShareText is the text copied by the share control.
func ShareText(name, symbol, address string) string {
	return fmt.Sprintf("Check out %s (%s) %s", name, symbol, fmt.Sprintf(AppTokenURL, address))
}

// TweetURL opens a prefilled tweet for the share text.
func TweetURL(name, symbol, address string) string {
	return fmt.Sprintf(TweetIntentURL, url.QueryEscape(ShareText(name, symbol, address)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
