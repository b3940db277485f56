//go:build windows

package publish

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	fsctlSetReparsePoint   = 0x000900A4
	ioReparseTagMountPoint = 0xA0000003

	// ReparseTag, ReparseDataLength, Reserved
	reparseHeaderSize = 8
	// SubstituteNameOffset/Length, PrintNameOffset/Length
	mountPointHeaderSize = 8
)

// createJunction makes link an empty directory and turns it into a mount
// point reparse point targeting target.
func createJunction(target, link string) error {
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if err := os.Mkdir(link, 0o755); err != nil {
		return err
	}

	if err := setMountPoint(link, target); err != nil {
		_ = os.Remove(link)
		return err
	}
	return nil
}

func setMountPoint(link, target string) error {
	path, err := windows.UTF16PtrFromString(link)
	if err != nil {
		return err
	}

	handle, err := windows.CreateFile(
		path,
		windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OPEN_REPARSE_POINT|windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	defer func() {
		_ = windows.CloseHandle(handle)
	}()

	buf := mountPointBuffer(target)

	var returned uint32
	if err := windows.DeviceIoControl(
		handle,
		fsctlSetReparsePoint,
		&buf[0],
		uint32(len(buf)),
		nil,
		0,
		&returned,
		nil,
	); err != nil {
		return fmt.Errorf("set reparse point on %s: %w", link, err)
	}
	return nil
}

// mountPointBuffer encodes a REPARSE_DATA_BUFFER for a mount point.
func mountPointBuffer(target string) []byte {
	substitute := utf16.Encode([]rune(`\??\` + target))
	printName := utf16.Encode([]rune(target))

	const u16 = int(unsafe.Sizeof(uint16(0)))
	subLen := len(substitute) * u16
	printLen := len(printName) * u16
	// Both names are NUL terminated.
	pathLen := subLen + u16 + printLen + u16
	dataLen := mountPointHeaderSize + pathLen

	buf := make([]byte, reparseHeaderSize+dataLen)
	le := binary.LittleEndian

	le.PutUint32(buf[0:], ioReparseTagMountPoint)
	le.PutUint16(buf[4:], uint16(dataLen))
	le.PutUint16(buf[8:], 0)
	le.PutUint16(buf[10:], uint16(subLen))
	le.PutUint16(buf[12:], uint16(subLen+u16))
	le.PutUint16(buf[14:], uint16(printLen))

	off := reparseHeaderSize + mountPointHeaderSize
	for _, c := range substitute {
		le.PutUint16(buf[off:], c)
		off += u16
	}
	off += u16
	for _, c := range printName {
		le.PutUint16(buf[off:], c)
		off += u16
	}

	return buf
}
