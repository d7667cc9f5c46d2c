// Package roothints provides the standard IANA root nameserver hints used
// to seed iterative resolution.
package roothints

import "net"

// RootServer is one entry of the root hints list
type RootServer struct {
	Name string `json:"name"`
	IPv4 net.IP `json:"ipv4"`
	IPv6 net.IP `json:"ipv6"`
}

// Servers lists the thirteen root nameservers, a through m
var Servers = []RootServer{
	{Name: "a.root-servers.net.", IPv4: net.ParseIP("198.41.0.4"), IPv6: net.ParseIP("2001:503:ba3e::2:30")},
	{Name: "b.root-servers.net.", IPv4: net.ParseIP("199.9.14.201"), IPv6: net.ParseIP("2001:500:200::b")},
	{Name: "c.root-servers.net.", IPv4: net.ParseIP("192.33.4.12"), IPv6: net.ParseIP("2001:500:2::c")},
	{Name: "d.root-servers.net.", IPv4: net.ParseIP("199.7.91.13"), IPv6: net.ParseIP("2001:500:2d::d")},
	{Name: "e.root-servers.net.", IPv4: net.ParseIP("192.203.230.10"), IPv6: net.ParseIP("2001:500:a8::e")},
	{Name: "f.root-servers.net.", IPv4: net.ParseIP("192.5.5.241"), IPv6: net.ParseIP("2001:500:2f::f")},
	{Name: "g.root-servers.net.", IPv4: net.ParseIP("192.112.36.4"), IPv6: net.ParseIP("2001:500:12::d0d")},
	{Name: "h.root-servers.net.", IPv4: net.ParseIP("198.97.190.53"), IPv6: net.ParseIP("2001:500:1::53")},
	{Name: "i.root-servers.net.", IPv4: net.ParseIP("192.36.148.17"), IPv6: net.ParseIP("2001:7fe::53")},
	{Name: "j.root-servers.net.", IPv4: net.ParseIP("192.58.128.30"), IPv6: net.ParseIP("2001:503:c27::2:30")},
	{Name: "k.root-servers.net.", IPv4: net.ParseIP("193.0.14.129"), IPv6: net.ParseIP("2001:7fd::1")},
	{Name: "l.root-servers.net.", IPv4: net.ParseIP("199.7.83.42"), IPv6: net.ParseIP("2001:500:9f::42")},
	{Name: "m.root-servers.net.", IPv4: net.ParseIP("202.12.27.33"), IPv6: net.ParseIP("2001:dc3::35")},
}

// IPv4Addresses returns the IPv4 root addresses in hint order
func IPv4Addresses() []net.IP {
	out := make([]net.IP, 0, len(Servers))
	for _, s := range Servers {
		out = append(out, s.IPv4)
	}
	return out
}

// IPv6Addresses returns the IPv6 root addresses in hint order
func IPv6Addresses() []net.IP {
	out := make([]net.IP, 0, len(Servers))
	for _, s := range Servers {
		out = append(out, s.IPv6)
	}
	return out
}

// Addresses returns IPv4 roots followed by IPv6 roots, so resolution
// prefers the v4 transport but can fall back across address families
func Addresses() []net.IP {
	return append(IPv4Addresses(), IPv6Addresses()...)
}
