// Package protocol contains the Mollom XML-RPC wire format: methods, values,
// request signing and response decoding.
package protocol

// Method is a Mollom RPC method name without the "mollom." prefix
type Method string

const (
	CheckCaptcha    Method = "checkCaptcha"
	CheckContent    Method = "checkContent"
	GetAudioCaptcha Method = "getAudioCaptcha"
	GetImageCaptcha Method = "getImageCaptcha"
	GetServerList   Method = "getServerList"
	GetStatistics   Method = "getStatistics"
	SendFeedback    Method = "sendFeedback"
	VerifyKey       Method = "verifyKey"
)

// MethodPrefix is prepended to the method in <methodName>
const MethodPrefix = "mollom."

// Methods is the allow-list of callable methods
var Methods = []Method{
	CheckCaptcha,
	CheckContent,
	GetAudioCaptcha,
	GetImageCaptcha,
	GetServerList,
	GetStatistics,
	SendFeedback,
	VerifyKey,
}

func init() {
	if len(Methods) == 0 {
		panic("protocol: empty method allow-list")
	}
}

// Valid reports whether m is in the allow-list
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// MethodNames returns the allow-list as plain strings
func MethodNames() []string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return names
}

// Fault codes reported by the service
const (
	// FaultInternal is a parse error or an internal problem on the server
	FaultInternal = 1000
	// FaultServerListOutdated asks the client to fetch a fresh server list
	FaultServerListOutdated = 1100
	// FaultServerBusy asks the client to try the next server
	FaultServerBusy = 1200
)
