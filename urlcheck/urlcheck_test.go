package urlcheck

import "testing"

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://google.com", true},
		{"http://example.com", true},
		{"HTTPS://example.com/path", true},
		{"  https://example.com  ", true},
		{"ftp://example.com", false},
		{"not-a-url", false},
		{"", false},
		{"https://", false},
		{"javascript:alert(1)", false},
		{"http:example.com", true},
		{"https:/example.com", true},
		{"https:///example.com/x", true},
		{"http://2130706433/", true},
		{"http://1.2.3.999/", false},
		{"http://example.1/", false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeURLSyntax(t *testing.T) {
	info := AnalyzeURLSyntax("https://sub.example.com/path?q=1")
	if !info.Valid() {
		t.Fatal("expected parsed syntax")
	}
	if *info.Protocol != "https" {
		t.Errorf("protocol = %q", *info.Protocol)
	}
	if *info.Hostname != "sub.example.com" {
		t.Errorf("hostname = %q", *info.Hostname)
	}
	if *info.Path != "/path?q=1" {
		t.Errorf("path = %q", *info.Path)
	}

	t.Run("no query", func(t *testing.T) {
		info := AnalyzeURLSyntax("http://Example.COM/a/b")
		if *info.Hostname != "example.com" || *info.Path != "/a/b" {
			t.Errorf("got %q %q", *info.Hostname, *info.Path)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		info := AnalyzeURLSyntax("https://example.com")
		if *info.Path != "/" {
			t.Errorf("path = %q, want /", *info.Path)
		}
	})

	t.Run("empty query dropped", func(t *testing.T) {
		info := AnalyzeURLSyntax("https://example.com/x?")
		if *info.Path != "/x" {
			t.Errorf("path = %q, want /x", *info.Path)
		}
	})

	t.Run("missing slashes", func(t *testing.T) {
		for _, in := range []string{"http:example.com", "http:/example.com", `http:\\example.com`} {
			info := AnalyzeURLSyntax(in)
			if !info.Valid() || *info.Protocol != "http" || *info.Hostname != "example.com" || *info.Path != "/" {
				t.Errorf("AnalyzeURLSyntax(%q) = %v %v %v", in, info.Protocol, info.Hostname, info.Path)
			}
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"not-valid", "", "%%%"} {
			info := AnalyzeURLSyntax(in)
			if info.Protocol != nil || info.Hostname != nil || info.Path != nil {
				t.Errorf("AnalyzeURLSyntax(%q) should be all nil", in)
			}
		}
	})
}

func TestIsIPObfuscation(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"125.0.0.1.com", true},
		{"192.168.1.1.example.com", true},
		{"evil.10.0.0.1", true},
		{"127.0.0.1", true},
		{"github.com", false},
		{"1.2.3.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsIPObfuscation(tt.host); got != tt.want {
			t.Errorf("IsIPObfuscation(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestCanonicalHostnames(t *testing.T) {
	tests := []struct {
		url  string
		host string
	}{
		{"http://2130706433/", "127.0.0.1"},
		{"http://0x7f.0x0.0x0.0x1/", "127.0.0.1"},
		{"http://127.1/", "127.0.0.1"},
		{"http://0177.0.0.01/", "127.0.0.1"},
		{"http://10.1.258/", "10.1.1.2"},
		{"http://127.0.0.1./", "127.0.0.1"},
		{"http://１２５．０．０．１.com/", "125.0.0.1.com"},
		{"https://Bücher.Example/", "xn--bcher-kva.example"},
		{"https://github.com/", "github.com"},
		{"https://1.2.3.com/", "1.2.3.com"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			info := AnalyzeURLSyntax(tt.url)
			if !info.Valid() {
				t.Fatal("expected parsed syntax")
			}
			if *info.Hostname != tt.host {
				t.Fatalf("hostname = %q, want %q", *info.Hostname, tt.host)
			}
		})
	}

	for _, u := range []string{"http://2130706433/", "http://0x7f.0x0.0x0.0x1/", "http://127.1/", "http://１２５．０．０．１.com/"} {
		if !IsIPObfuscation(*AnalyzeURLSyntax(u).Hostname) {
			t.Errorf("%s not flagged as ip obfuscation", u)
		}
	}

	for _, u := range []string{"http://1.2.3.4.5/", "http://256.0.0.1/", "http://4294967296/", "http://0x100000000/", "http://1..2/"} {
		if AnalyzeURLSyntax(u).Valid() || IsValidURL(u) {
			t.Errorf("%s should be rejected", u)
		}
	}
}

func TestHasSuspiciousKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://secure-login.com", true},
		{"https://VERIFY.com", true},
		{"https://example.com/account/update", true},
		{"https://example.com/?promo=FreeBonus", true},
		{"https://github.com", false},
		{"https://example.com/docs", false},
	}

	for _, tt := range tests {
		if got := HasSuspiciousKeywords(tt.in); got != tt.want {
			t.Errorf("HasSuspiciousKeywords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSuspiciousKeywordsIsCopy(t *testing.T) {
	kw := SuspiciousKeywords()
	kw[0] = "changed"
	if HasSuspiciousKeywords("https://example.com/changed") {
		t.Fatal("mutating the returned slice changed the keyword list")
	}
}
