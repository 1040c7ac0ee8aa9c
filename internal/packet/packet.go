// ABOUTME: De-framed strap packet and the protocol's numeric constants.
// ABOUTME: Packet types, command numbers, and history metadata commands.
package packet

import "fmt"

// Packet is a strap packet with transport framing and CRCs already removed.
type Packet struct {
	Type    PacketType
	Seq     uint8
	Cmd     uint8
	Payload []byte
}

// New creates a packet.
func New(t PacketType, seq, cmd uint8, payload []byte) Packet {
	return Packet{Type: t, Seq: seq, Cmd: cmd, Payload: payload}
}

func (p Packet) String() string {
	return fmt.Sprintf("packet{type=%s seq=%d cmd=%d len=%d}", p.Type, p.Seq, p.Cmd, len(p.Payload))
}

// PacketType is the first byte of a de-framed packet.
type PacketType uint8

const (
	TypeCommand                 PacketType = 35
	TypeCommandResponse         PacketType = 36
	TypeRealtimeData            PacketType = 40
	TypeRealtimeRawData         PacketType = 43
	TypeHistoricalData          PacketType = 47
	TypeEvent                   PacketType = 48
	TypeMetadata                PacketType = 49
	TypeConsoleLogs             PacketType = 50
	TypeRealtimeImuDataStream   PacketType = 51
	TypeHistoricalImuDataStream PacketType = 52
)

var packetTypeNames = map[PacketType]string{
	TypeCommand:                 "command",
	TypeCommandResponse:         "command_response",
	TypeRealtimeData:            "realtime_data",
	TypeRealtimeRawData:         "realtime_raw_data",
	TypeHistoricalData:          "historical_data",
	TypeEvent:                   "event",
	TypeMetadata:                "metadata",
	TypeConsoleLogs:             "console_logs",
	TypeRealtimeImuDataStream:   "realtime_imu",
	TypeHistoricalImuDataStream: "historical_imu",
}

func (t PacketType) String() string {
	if name, ok := packetTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// MetadataType is the command byte of a metadata packet.
type MetadataType uint8

const (
	HistoryStart    MetadataType = 1
	HistoryEnd      MetadataType = 2
	HistoryComplete MetadataType = 3
)

func (m MetadataType) String() string {
	switch m {
	case HistoryStart:
		return "history_start"
	case HistoryEnd:
		return "history_end"
	case HistoryComplete:
		return "history_complete"
	}
	return fmt.Sprintf("metadata(%d)", uint8(m))
}

func metadataTypeFromByte(b uint8) (MetadataType, bool) {
	m := MetadataType(b)
	switch m {
	case HistoryStart, HistoryEnd, HistoryComplete:
		return m, true
	}
	return 0, false
}

// Command is a strap command number.
type Command uint8

const (
	CmdLinkValid                 Command = 1
	CmdGetMaxProtocolVersion     Command = 2
	CmdToggleRealtimeHr          Command = 3
	CmdReportVersionInfo         Command = 7
	CmdSetClock                  Command = 10
	CmdGetClock                  Command = 11
	CmdToggleGenericHrProfile    Command = 14
	CmdToggleR7DataCollection    Command = 16
	CmdRunHapticPatternMaverick  Command = 19
	CmdAbortHistoricalTransmits  Command = 20
	CmdSendHistoricalData        Command = 22
	CmdHistoricalDataResult      Command = 23
	CmdForceTrim                 Command = 25
	CmdGetBatteryLevel           Command = 26
	CmdRebootStrap               Command = 29
	CmdPowerCycleStrap           Command = 32
	CmdSetReadPointer            Command = 33
	CmdGetDataRange              Command = 34
	CmdGetHelloHarvard           Command = 35
	CmdStartFirmwareLoad         Command = 36
	CmdLoadFirmwareData          Command = 37
	CmdProcessFirmwareImage      Command = 38
	CmdSetLedDrive               Command = 39
	CmdGetLedDrive               Command = 40
	CmdSetTiaGain                Command = 41
	CmdGetTiaGain                Command = 42
	CmdSetBiasOffset             Command = 43
	CmdGetBiasOffset             Command = 44
	CmdEnterBleDfu               Command = 45
	CmdSetDpType                 Command = 52
	CmdForceDpType               Command = 53
	CmdSendR10R11Realtime        Command = 63
	CmdSetAlarmTime              Command = 66
	CmdGetAlarmTime              Command = 67
	CmdRunAlarm                  Command = 68
	CmdDisableAlarm              Command = 69
	CmdGetAdvertisingNameHarvard Command = 76
	CmdSetAdvertisingNameHarvard Command = 77
	CmdRunHapticsPattern         Command = 79
	CmdGetAllHapticsPattern      Command = 80
	CmdStartRawData              Command = 81
	CmdStopRawData               Command = 82
	CmdVerifyFirmwareImage       Command = 83
	CmdGetBodyLocationAndStatus  Command = 84
	CmdEnterHighFreqSync         Command = 96
	CmdExitHighFreqSync          Command = 97
	CmdGetExtendedBatteryInfo    Command = 98
	CmdResetFuelGauge            Command = 99
	CmdCalibrateCapsense         Command = 100
	CmdToggleImuModeHistorical   Command = 105
	CmdToggleImuMode             Command = 106
	CmdEnableOpticalData         Command = 107
	CmdToggleOpticalMode         Command = 108
	CmdStartFfKitExport          Command = 115
	CmdStopFfKitExport           Command = 116
	CmdGetFfKitStatus            Command = 117
	CmdSelectWrist               Command = 123
	CmdToggleLabradorFiltered    Command = 139
)

var commandNames = map[Command]string{
	CmdLinkValid:                 "link_valid",
	CmdGetMaxProtocolVersion:     "get_max_protocol_version",
	CmdToggleRealtimeHr:          "toggle_realtime_hr",
	CmdReportVersionInfo:         "report_version_info",
	CmdSetClock:                  "set_clock",
	CmdGetClock:                  "get_clock",
	CmdToggleGenericHrProfile:    "toggle_generic_hr_profile",
	CmdToggleR7DataCollection:    "toggle_r7_data_collection",
	CmdRunHapticPatternMaverick:  "run_haptic_pattern_maverick",
	CmdAbortHistoricalTransmits:  "abort_historical_transmits",
	CmdSendHistoricalData:        "send_historical_data",
	CmdHistoricalDataResult:      "historical_data_result",
	CmdForceTrim:                 "force_trim",
	CmdGetBatteryLevel:           "get_battery_level",
	CmdRebootStrap:               "reboot_strap",
	CmdPowerCycleStrap:           "power_cycle_strap",
	CmdSetReadPointer:            "set_read_pointer",
	CmdGetDataRange:              "get_data_range",
	CmdGetHelloHarvard:           "get_hello_harvard",
	CmdStartFirmwareLoad:         "start_firmware_load",
	CmdLoadFirmwareData:          "load_firmware_data",
	CmdProcessFirmwareImage:      "process_firmware_image",
	CmdSetLedDrive:               "set_led_drive",
	CmdGetLedDrive:               "get_led_drive",
	CmdSetTiaGain:                "set_tia_gain",
	CmdGetTiaGain:                "get_tia_gain",
	CmdSetBiasOffset:             "set_bias_offset",
	CmdGetBiasOffset:             "get_bias_offset",
	CmdEnterBleDfu:               "enter_ble_dfu",
	CmdSetDpType:                 "set_dp_type",
	CmdForceDpType:               "force_dp_type",
	CmdSendR10R11Realtime:        "send_r10_r11_realtime",
	CmdSetAlarmTime:              "set_alarm_time",
	CmdGetAlarmTime:              "get_alarm_time",
	CmdRunAlarm:                  "run_alarm",
	CmdDisableAlarm:              "disable_alarm",
	CmdGetAdvertisingNameHarvard: "get_advertising_name_harvard",
	CmdSetAdvertisingNameHarvard: "set_advertising_name_harvard",
	CmdRunHapticsPattern:         "run_haptics_pattern",
	CmdGetAllHapticsPattern:      "get_all_haptics_pattern",
	CmdStartRawData:              "start_raw_data",
	CmdStopRawData:               "stop_raw_data",
	CmdVerifyFirmwareImage:       "verify_firmware_image",
	CmdGetBodyLocationAndStatus:  "get_body_location_and_status",
	CmdEnterHighFreqSync:         "enter_high_freq_sync",
	CmdExitHighFreqSync:          "exit_high_freq_sync",
	CmdGetExtendedBatteryInfo:    "get_extended_battery_info",
	CmdResetFuelGauge:            "reset_fuel_gauge",
	CmdCalibrateCapsense:         "calibrate_capsense",
	CmdToggleImuModeHistorical:   "toggle_imu_mode_historical",
	CmdToggleImuMode:             "toggle_imu_mode",
	CmdEnableOpticalData:         "enable_optical_data",
	CmdToggleOpticalMode:         "toggle_optical_mode",
	CmdStartFfKitExport:          "start_ff_kit_export",
	CmdStopFfKitExport:           "stop_ff_kit_export",
	CmdGetFfKitStatus:            "get_ff_kit_status",
	CmdSelectWrist:               "select_wrist",
	CmdToggleLabradorFiltered:    "toggle_labrador_filtered",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// commandFromByte reports whether b is a known command number.
func commandFromByte(b uint8) (Command, bool) {
	c := Command(b)
	_, ok := commandNames[c]
	return c, ok
}
