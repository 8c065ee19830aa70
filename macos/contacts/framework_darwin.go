//go:build darwin && cgo

package contacts

/*
#cgo CFLAGS: -fobjc-arc
#cgo LDFLAGS: -framework Foundation -framework Contacts
#include "framework_darwin.h"
#include <stdlib.h>
*/
import "C"

import (
	"strings"
	"unsafe"
)

const nativeAvailable = true

type cleanupStack struct {
	fns []func()
}

func (c *cleanupStack) add(fn func()) {
	if fn != nil {
		c.fns = append(c.fns, fn)
	}
}

func (c *cleanupStack) done() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func cString(cs *cleanupStack, s string) *C.char {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	p := C.CString(s)
	cs.add(func() { C.free(unsafe.Pointer(p)) })
	return p
}

func goString(p *C.char) string {
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

func goStrings(p **C.char, n C.int) []string {
	if p == nil || n <= 0 {
		return nil
	}
	values := unsafe.Slice(p, int(n))
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, goString(v))
	}
	return out
}

func errorCodeFromC(code C.int) ErrorCode {
	switch code {
	case C.CONTACTS_ERR_PERMISSION_DENIED:
		return ErrorCodePermissionDenied
	case C.CONTACTS_ERR_NOT_FOUND:
		return ErrorCodeNotFound
	case C.CONTACTS_ERR_STORE:
		return ErrorCodeStore
	default:
		return ErrorCodeUnknown
	}
}

func errorFromC(cerr C.ContactsError) error {
	return &Error{Code: errorCodeFromC(cerr.code), Message: strings.TrimSpace(goString(cerr.message))}
}

type framework struct{}

func newNative() native {
	return framework{}
}

func (framework) authorization() (AuthStatus, error) {
	switch C.contacts_authorization_status() {
	case C.CONTACTS_AUTH_NOT_DETERMINED:
		return AuthStatusNotDetermined, nil
	case C.CONTACTS_AUTH_RESTRICTED:
		return AuthStatusRestricted, nil
	case C.CONTACTS_AUTH_DENIED:
		return AuthStatusDenied, nil
	case C.CONTACTS_AUTH_AUTHORIZED:
		return AuthStatusAuthorized, nil
	default:
		return "", &Error{Code: ErrorCodeUnknown, Message: "unknown authorization status"}
	}
}

func (framework) containers() ([]container, error) {
	var out C.ContactsContainerList
	var cerr C.ContactsError
	defer C.contacts_free_error(&cerr)
	if C.contacts_list_containers(&out, &cerr) == 0 {
		return nil, errorFromC(cerr)
	}
	defer C.contacts_free_containers(&out)

	items := unsafe.Slice(out.items, int(out.items_len))
	containers := make([]container, 0, len(items))
	for i := range items {
		containers = append(containers, container{ID: goString(items[i].id), Name: goString(items[i].name)})
	}
	return containers, nil
}

func (framework) fetch(q fetchQuery) ([]person, error) {
	cs := &cleanupStack{}
	defer cs.done()

	req := C.ContactsFetchRequest{
		container_id:  cString(cs, q.ContainerID),
		name_contains: cString(cs, q.NameContains),
		limit:         C.int(q.Limit),
	}

	var out C.ContactsFetchResult
	var cerr C.ContactsError
	defer C.contacts_free_error(&cerr)
	if C.contacts_fetch(&req, &out, &cerr) == 0 {
		return nil, errorFromC(cerr)
	}
	defer C.contacts_free_fetch_result(&out)

	items := unsafe.Slice(out.items, int(out.items_len))
	people := make([]person, 0, len(items))
	for i := range items {
		people = append(people, person{
			ID:           goString(items[i].id),
			ContainerID:  q.ContainerID,
			Name:         goString(items[i].display_name),
			Organization: goString(items[i].organization),
			Emails:       goStrings(items[i].emails, items[i].emails_len),
			Phones:       goStrings(items[i].phones, items[i].phones_len),
		})
	}
	return people, nil
}
