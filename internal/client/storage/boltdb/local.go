package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/globalconnect/internal/client/storage"
)

// SavePost stores a post keyed by kind and ID
func (s *Storage) SavePost(ctx context.Context, post *storage.Post) error {
	if post.ID == "" || post.Kind == "" {
		return fmt.Errorf("post id and kind are required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketPosts)
		if root == nil {
			return fmt.Errorf("posts bucket not found")
		}

		bucket, err := root.CreateBucketIfNotExists([]byte(post.Kind))
		if err != nil {
			return fmt.Errorf("failed to create %s posts bucket: %w", post.Kind, err)
		}

		data, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("failed to marshal post: %w", err)
		}

		if err := bucket.Put([]byte(post.ID), data); err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}
		return nil
	})
}

// ListPosts returns posts of the given kind, newest first
func (s *Storage) ListPosts(ctx context.Context, kind string) ([]*storage.Post, error) {
	posts := make([]*storage.Post, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketPosts)
		if root == nil {
			return fmt.Errorf("posts bucket not found")
		}

		bucket := root.Bucket([]byte(kind))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var post storage.Post
			if err := json.Unmarshal(v, &post); err != nil {
				return fmt.Errorf("failed to unmarshal post %s: %w", k, err)
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

// AppendMessage adds a message to the partner's transcript.
// Messages are keyed by bucket sequence so iteration keeps sending order.
func (s *Storage) AppendMessage(ctx context.Context, msg *storage.Message) error {
	if msg.PartnerID == "" {
		return fmt.Errorf("partner id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketMessages)
		if root == nil {
			return fmt.Errorf("messages bucket not found")
		}

		bucket, err := root.CreateBucketIfNotExists([]byte(msg.PartnerID))
		if err != nil {
			return fmt.Errorf("failed to create transcript bucket: %w", err)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate message sequence: %w", err)
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		if err := bucket.Put(sequenceKey(seq), data); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		return nil
	})
}

// ListMessages returns the partner's transcript in sending order
func (s *Storage) ListMessages(ctx context.Context, partnerID string) ([]*storage.Message, error) {
	messages := make([]*storage.Message, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketMessages)
		if root == nil {
			return fmt.Errorf("messages bucket not found")
		}

		bucket := root.Bucket([]byte(partnerID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var msg storage.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			messages = append(messages, &msg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// sequenceKey кодирует номер big-endian, чтобы ForEach шел по порядку
func sequenceKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
