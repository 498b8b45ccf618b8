package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpRecordVersionV1 = 1
)

var (
	ErrOtpNotFound         = errors.New("otp record not found")
	ErrOtpMismatch         = errors.New("otp secret mismatch")
	ErrOtpAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrOtpRedisUnavailable = errors.New("otp redis unavailable")
)

type OtpRecord struct {
	AccountID  string
	SecretHash [32]byte
	ExpiresAt  int64
	Attempts   uint16
}

// OtpStore keeps at most one live code per account. The record is keyed by
// account id, so a fresh Save atomically supersedes any earlier code.
type OtpStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewOtpStore(redisClient redis.UniversalClient, prefix string) *OtpStore {
	if prefix == "" {
		prefix = "co"
	}
	return &OtpStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *OtpStore) key(accountID string) string {
	return s.prefix + ":otp:" + accountID
}

func (s *OtpStore) Save(ctx context.Context, record *OtpRecord, ttl time.Duration) error {
	encoded, err := encodeOtpRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(record.AccountID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOtpRedisUnavailable, err)
	}

	return nil
}

// Peek validates the provided hash against the live record without consuming
// it and without counting an attempt.
func (s *OtpStore) Peek(ctx context.Context, accountID string, providedHash [32]byte) error {
	data, err := s.redis.Get(ctx, s.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOtpNotFound
		}
		return fmt.Errorf("%w: %v", ErrOtpRedisUnavailable, err)
	}

	record, err := decodeOtpRecord(data)
	if err != nil {
		return err
	}
	if time.Now().Unix() > record.ExpiresAt {
		return ErrOtpNotFound
	}

	if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
		return ErrOtpMismatch
	}

	return nil
}

// Consume deletes the record on a matching hash, increments the attempt
// counter on a mismatch, and deletes the record once attempts run out. The
// whole check runs under WATCH so a concurrent Save or Consume restarts it.
func (s *OtpStore) Consume(
	ctx context.Context,
	accountID string,
	providedHash [32]byte,
	maxAttempts int,
) error {
	const maxRetries = 4
	key := s.key(accountID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeOtpRecord(data)
			if err != nil {
				return err
			}

			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrOtpNotFound
			}

			if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if int(record.Attempts) >= maxAttempts {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return ErrOtpAttemptsExceeded
				}

				ttl := time.Until(time.Unix(record.ExpiresAt, 0))
				if ttl <= 0 {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return ErrOtpNotFound
				}

				updated, err := encodeOtpRecord(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrOtpMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrOtpNotFound
			case errors.Is(err, ErrOtpNotFound), errors.Is(err, ErrOtpMismatch), errors.Is(err, ErrOtpAttemptsExceeded):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrOtpRedisUnavailable, err)
			}
		}

		return nil
	}

	return ErrOtpNotFound
}

func (s *OtpStore) Delete(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOtpRedisUnavailable, err)
	}
	return nil
}

func encodeOtpRecord(record *OtpRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(otpRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.AccountID) > 65535 {
		return nil, errors.New("otp record account id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.AccountID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.AccountID)
	buf.Write(record.SecretHash[:])

	return buf.Bytes(), nil
}

func decodeOtpRecord(data []byte) (*OtpRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != otpRecordVersionV1 {
		return nil, errors.New("invalid otp record version")
	}

	record := &OtpRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var accountIDLen uint16
	if err := binary.Read(reader, binary.BigEndian, &accountIDLen); err != nil {
		return nil, err
	}

	accountID := make([]byte, accountIDLen)
	if _, err := io.ReadFull(reader, accountID); err != nil {
		return nil, err
	}
	record.AccountID = string(accountID)

	if _, err := io.ReadFull(reader, record.SecretHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
