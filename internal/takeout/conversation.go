package takeout

import (
	"encoding/json"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

// Conversation type values observed in the export.
const (
	convTypeOneToOne = "STICKY_ONE_TO_ONE"
	convTypeGroup    = "GROUP"
)

// Participant type values observed in the export.
const (
	participantGaia            = "GAIA"
	participantOffNetworkPhone = "OFF_NETWORK_PHONE"
	participantUnknownNumber   = "UNKNOWN_PHONE_NUMBER"
	participantMalformedNumber = "MALFORMED_PHONE_NUMBER"
)

var conversationRequiredKeys = []string{"id", "type", "self_conversation_state", "participant_data"}

// ResolveConversation extracts the owner, the other participants, and the
// conversation classification from one raw conversation record.
func ResolveConversation(raw RawConversation, log *logging.Logger) (domain.ConversationMeta, error) {
	var detail conversationDetail
	if err := strictDecode(raw.Conversation.Conversation, &detail, conversationRequiredKeys, "conversation"); err != nil {
		return domain.ConversationMeta{}, err
	}

	var ctype domain.ConversationType
	switch detail.Type {
	case convTypeOneToOne:
		ctype = domain.ConversationOneToOne
	case convTypeGroup:
		ctype = domain.ConversationGroup
	default:
		return domain.ConversationMeta{}, domain.Schemaf("unknown conversation type %q", detail.Type)
	}

	var selfState selfConversationState
	if err := json.Unmarshal(detail.SelfConversationState, &selfState); err != nil {
		return domain.ConversationMeta{}, domain.Schemaf("conversation %s: decoding self state: %v", detail.ID.ID, err)
	}
	userGaiaID := selfState.SelfReadState.ParticipantID.GaiaID

	var rawParticipants []participantData
	if err := json.Unmarshal(detail.ParticipantData, &rawParticipants); err != nil {
		return domain.ConversationMeta{}, domain.Schemaf("conversation %s: decoding participants: %v", detail.ID.ID, err)
	}

	var user *domain.Participant
	var participants []domain.Participant
	for _, p := range rawParticipants {
		if userGaiaID != "" && p.ID.GaiaID == userGaiaID {
			// Owners are not externally addressed by phone number in the
			// export; the fallback display name stands in.
			user = &domain.Participant{ID: p.ID.GaiaID, Address: p.FallbackName}
			continue
		}

		var address string
		switch p.ParticipantType {
		case participantGaia:
			if p.PhoneNumber != nil {
				address = p.PhoneNumber.E164
			}
		case participantOffNetworkPhone:
			if p.PhoneNumber == nil {
				return domain.ConversationMeta{}, domain.Schemaf(
					"off-network participant %s has no phone number", p.ID.GaiaID)
			}
			address = p.PhoneNumber.E164
		case participantUnknownNumber:
			// Anonymized sources such as voicemail relays. Deliberately
			// unreachable, so their messages are skipped rather than lost.
			log.Warn().
				Str("conversation_id", detail.ID.ID).
				Str("gaia_id", p.ID.GaiaID).
				Msg("skipping participant with unknown phone number")
			continue
		case participantMalformedNumber:
			// Short-code senders (e.g. bank alerts); the fallback name
			// carries the code.
			address = p.FallbackName
		default:
			return domain.ConversationMeta{}, domain.Schemaf("unknown participant type %q", p.ParticipantType)
		}

		participants = append(participants, domain.Participant{ID: p.ID.GaiaID, Address: address})
	}

	if user == nil {
		return domain.ConversationMeta{}, domain.Validationf(
			"conversation %s: owner not found in participant data", detail.ID.ID)
	}
	if ctype == domain.ConversationOneToOne && len(participants) != 1 {
		return domain.ConversationMeta{}, domain.Validationf(
			"one-to-one conversation %s resolved to %d participants", detail.ID.ID, len(participants))
	}

	return domain.ConversationMeta{
		ConversationID: detail.ID.ID,
		Type:           ctype,
		User:           *user,
		Participants:   participants,
		EventCount:     len(raw.Events),
	}, nil
}
