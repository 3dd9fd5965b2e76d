//go:build windows

package signal

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/daywatch-app/daywatch/internal/domain"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// osIdleDuration returns how long the user has been idle on Windows.
// Uses GetLastInputInfo (keyboard + mouse activity).
func osIdleDuration() (time.Duration, error) {
	var info lastInputInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, domain.ErrSignalUnavailable
	}

	tick, _, _ := procGetTickCount.Call()
	idle := uint32(tick) - info.dwTime
	return time.Duration(idle) * time.Millisecond, nil
}

// osDisplaySleepAssertion is not queryable through a stable public API on
// Windows (SetThreadExecutionState has no reader). Report none; idle time
// alone decides activity here.
func osDisplaySleepAssertion() bool {
	return false
}
