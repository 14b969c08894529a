package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func encodeCommand(cmd domain.ActuatorCommand) ([]byte, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode actuator command", err)
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal actuator command: %w", err)
	}
	return data, nil
}

func decodeCommand(data []byte) (domain.ActuatorCommand, error) {
	var cmd domain.ActuatorCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return domain.ActuatorCommand{}, domain.WrapError(domain.ErrInvalidInput, "decode actuator command", err)
	}
	// Out-of-range angles are left to the actuator, which clamps them.
	if strings.TrimSpace(cmd.CommandID) == "" {
		return domain.ActuatorCommand{}, domain.WrapError(domain.ErrInvalidInput, "decode actuator command", errors.New("command_id is required"))
	}
	return cmd, nil
}

func validateCommand(cmd domain.ActuatorCommand) error {
	if strings.TrimSpace(cmd.CommandID) == "" {
		return errors.New("command_id is required")
	}
	if cmd.Angle < domain.MinServoAngle || cmd.Angle > domain.MaxServoAngle {
		return fmt.Errorf("angle %d outside [%d,%d]", cmd.Angle, domain.MinServoAngle, domain.MaxServoAngle)
	}
	return nil
}
