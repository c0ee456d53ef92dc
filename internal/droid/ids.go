package droid

// DeviceID 子系统编号
type DeviceID = uint8

const (
	DeviceCore        DeviceID = 0x00
	DeviceBootloader  DeviceID = 0x01
	DeviceAPIAndShell DeviceID = 0x10
	DeviceSystemInfo  DeviceID = 0x11
	DevicePower       DeviceID = 0x13
	DeviceDrive       DeviceID = 0x16
	DeviceAnimatronic DeviceID = 0x17
	DeviceSensor      DeviceID = 0x18
	DeviceConnection  DeviceID = 0x19
	DeviceIO          DeviceID = 0x1A
	DeviceFirmware    DeviceID = 0x1F
)

// Core 设备 (0x00) 命令
const (
	cmdPing                  uint8 = 0x00
	cmdGetAPIProtocolVersion uint8 = 0x01
)

// Power 设备 (0x13) 命令
const (
	cmdEnterDeepSleep        uint8 = 0x00
	cmdSleep                 uint8 = 0x01
	cmdGetBatteryVoltage     uint8 = 0x03
	cmdGetBatteryState       uint8 = 0x04
	cmdWake                  uint8 = 0x0D
	cmdGetBatteryPercentage  uint8 = 0x10
	cmdGetChargerState       uint8 = 0x1F
)

// Drive 设备 (0x16) 命令
const (
	cmdSetRawMotors      uint8 = 0x01
	cmdResetYaw          uint8 = 0x06
	cmdDriveWithHeading  uint8 = 0x07
	cmdSetStabilization  uint8 = 0x0C
)

// Animatronic 设备 (0x17) 命令
const (
	cmdPlayAnimation    uint8 = 0x05
	cmdPerformLegAction uint8 = 0x0D
	cmdSetHeadPosition  uint8 = 0x0F
	cmdGetHeadPosition  uint8 = 0x14
	cmdGetLegAction     uint8 = 0x25
	cmdStopAnimation    uint8 = 0x2B
)

// IO 设备 (0x1A) 命令
const (
	cmdSetLED             uint8 = 0x04
	cmdPlayAudioFile      uint8 = 0x07
	cmdSetAudioVolume     uint8 = 0x08
	cmdGetAudioVolume     uint8 = 0x09
	cmdStopAllAudio       uint8 = 0x0A
	cmdSetAllLEDs32Bit    uint8 = 0x1A
	cmdReleaseLEDRequests uint8 = 0x4E
)

// SystemInfo 设备 (0x11) 命令
const (
	cmdGetMainAppVersion uint8 = 0x00
	cmdGetMACAddress     uint8 = 0x06
	cmdGetSKU            uint8 = 0x38
)

// RawMotorMode 裸电机模式
type RawMotorMode uint8

const (
	MotorOff RawMotorMode = iota
	MotorForward
	MotorReverse
)

// 行驶方向标志（DriveWithHeading 载荷末位）
const (
	driveFlagBackward uint8 = 0x01
	driveFlagTurbo    uint8 = 0x02
)

// StabilizationMode 姿态稳定模式
type StabilizationMode uint8

const (
	StabilizationDisabled StabilizationMode = iota
	StabilizationFull
	StabilizationPitchOnly
	StabilizationRollOnly
	StabilizationYawOnly
	StabilizationSpeedAndYaw
)

// LegAction 腿部动作指令
type LegAction uint8

const (
	LegActionStop LegAction = iota
	LegActionTripod
	LegActionBipod
	LegActionWaddle
)

// LegState 腿部当前状态
type LegState uint8

const (
	LegStateUnknown LegState = iota
	LegStateTripod
	LegStateBipod
	LegStateWaddle
	LegStateTransitioning
)

// BatteryState 电池状态
type BatteryState uint8

const (
	BatteryCharged BatteryState = iota
	BatteryCharging
	BatteryNotCharging
	BatteryOK
	BatteryLow
	BatteryCritical
	BatteryUnknown BatteryState = 0xFF
)

func (s BatteryState) String() string {
	switch s {
	case BatteryCharged:
		return "charged"
	case BatteryCharging:
		return "charging"
	case BatteryNotCharging:
		return "not-charging"
	case BatteryOK:
		return "ok"
	case BatteryLow:
		return "low"
	case BatteryCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// AudioPlaybackMode 音频播放策略
type AudioPlaybackMode uint8

const (
	PlayImmediately AudioPlaybackMode = iota
	PlayOnlyIfNotPlaying
	PlayAfterCurrent
)

// LED 掩码位序号
const (
	ledFrontRed uint = iota
	ledFrontGreen
	ledFrontBlue
	ledLogicDisplays
	ledBackRed
	ledBackGreen
	ledBackBlue
	ledHoloProjector
)
