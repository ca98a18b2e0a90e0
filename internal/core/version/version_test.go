package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	bi := Info()
	if bi.Service != "reportrelay" || bi.Version == "" || bi.Go == "" {
		t.Fatalf("unexpected build info %+v", bi)
	}
}

func TestClientVersionAndUserAgent(t *testing.T) {
	if ClientVersion() != "relay-"+version {
		t.Fatalf("client version %q", ClientVersion())
	}
	if !strings.HasPrefix(UserAgent(), "reportrelay/"+version+" (") {
		t.Fatalf("user agent %q", UserAgent())
	}
}
