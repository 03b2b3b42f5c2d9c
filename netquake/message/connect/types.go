// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package connect

// Code is the discriminant of a control packet.
type Code byte

const (
	CodeConnect     Code = 0x01
	CodeServerInfo  Code = 0x02
	CodePlayerInfo  Code = 0x03
	CodeRuleInfo    Code = 0x04
	CodeAccept      Code = 0x81
	CodeReject      Code = 0x82
	CodeServerReply Code = 0x83
	CodePlayerReply Code = 0x84
	CodeRuleReply   Code = 0x85
)

func (c Code) String() string {
	switch c {
	case CodeConnect:
		return "connect"
	case CodeServerInfo:
		return "server-info"
	case CodePlayerInfo:
		return "player-info"
	case CodeRuleInfo:
		return "rule-info"
	case CodeAccept:
		return "accept"
	case CodeReject:
		return "reject"
	case CodeServerReply:
		return "server-info-reply"
	case CodePlayerReply:
		return "player-info-reply"
	case CodeRuleReply:
		return "rule-info-reply"
	}
	return "unknown"
}
