// Package msgs holds the canonical .msg/.srv sources for the built-in
// message set used by the demo and test suite (std_msgs, geometry_msgs,
// rosgo_tutorials), and resolves their MD5 hashes once at package init via
// the schema compiler itself — the static-MD5-constant half of Design
// Note 9(a), but derived rather than hand-copied, so it can never drift from
// what schema.MD5 would compute for the same source text.
package msgs

import (
	_ "embed"
	"sync"

	"rosgo/schema"
)

//go:embed std_msgs/String.msg
var stringSrc string

//go:embed std_msgs/Header.msg
var headerSrc string

//go:embed geometry_msgs/Point.msg
var pointSrc string

//go:embed geometry_msgs/Quaternion.msg
var quaternionSrc string

//go:embed geometry_msgs/Pose.msg
var poseSrc string

//go:embed rosgo_tutorials/TwoInts.srv
var twoIntsSrc string

var (
	once       sync.Once
	initErr    error
	resolved   map[schema.Key]string
	twoIntsSrv *schema.Srv
)

func ensureInit() {
	once.Do(func() {
		strMsg, err := schema.ParseMsg("std_msgs", "String", stringSrc)
		if err != nil {
			initErr = err
			return
		}
		header, err := schema.ParseMsg("std_msgs", "Header", headerSrc)
		if err != nil {
			initErr = err
			return
		}
		point, err := schema.ParseMsg("geometry_msgs", "Point", pointSrc)
		if err != nil {
			initErr = err
			return
		}
		quaternion, err := schema.ParseMsg("geometry_msgs", "Quaternion", quaternionSrc)
		if err != nil {
			initErr = err
			return
		}
		pose, err := schema.ParseMsg("geometry_msgs", "Pose", poseSrc)
		if err != nil {
			initErr = err
			return
		}
		srv, err := schema.ParseSrv("rosgo_tutorials", "TwoInts", twoIntsSrc)
		if err != nil {
			initErr = err
			return
		}
		twoIntsSrv = srv

		resolved, initErr = schema.Resolve([]*schema.Msg{
			strMsg, header, point, quaternion, pose, srv.Request, srv.Response,
		})
	})
}

// MD5 returns the resolved content hash for a built-in (package, name) pair.
// Panics if the built-in registry failed to parse/resolve, which would only
// happen if the embedded .msg/.srv sources themselves were corrupted.
func MD5(pkg, name string) string {
	ensureInit()
	if initErr != nil {
		panic("msgs: built-in registry failed to resolve: " + initErr.Error())
	}
	hash, ok := resolved[schema.Key{Package: pkg, Name: name}]
	if !ok {
		panic("msgs: no such built-in message: " + pkg + "/" + name)
	}
	return hash
}

// TwoIntsServiceMD5 returns the service-level hash for rosgo_tutorials/TwoInts.
func TwoIntsServiceMD5() string {
	ensureInit()
	if initErr != nil {
		panic("msgs: built-in registry failed to resolve: " + initErr.Error())
	}
	hash, err := twoIntsSrv.MD5(resolved)
	if err != nil {
		panic("msgs: TwoInts service hash: " + err.Error())
	}
	return hash
}
