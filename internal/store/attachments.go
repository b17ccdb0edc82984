package store

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskplan/internal/model"
)

// AddLink appends a link to the task and returns the new link id.
func (s *Store) AddLink(taskID, title, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("store: link url is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = url
	}
	s.mu.Lock()
	idx, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	now := s.now()
	link := model.Link{ID: s.newID(), Title: title, URL: url, AddedAt: now}
	task := &s.tasks[idx]
	task.Links = append(task.Links, link)
	touch(task, now)
	s.unlockAndNotify(ChangeUpdate, []string{taskID})
	return link.ID, nil
}

func (s *Store) RemoveLink(taskID, linkID string) error {
	s.mu.Lock()
	idx, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	task := &s.tasks[idx]
	kept := make([]model.Link, 0, len(task.Links))
	for _, link := range task.Links {
		if link.ID != linkID {
			kept = append(kept, link)
		}
	}
	if len(kept) == len(task.Links) {
		s.mu.Unlock()
		return fmt.Errorf("%w: link %s", ErrAttachmentMatch, linkID)
	}
	task.Links = kept
	delete(s.previews, linkID)
	touch(task, s.now())
	s.unlockAndNotify(ChangeUpdate, []string{taskID})
	return nil
}

// AddDocument attaches doc, assigning an id and addedAt when missing.
func (s *Store) AddDocument(taskID string, doc model.Document) (string, error) {
	s.mu.Lock()
	idx, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	now := s.now()
	if doc.ID == "" {
		doc.ID = s.newID()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = now
	}
	if strings.TrimSpace(doc.Name) == "" {
		doc.Name = doc.FileName
	}
	task := &s.tasks[idx]
	task.Documents = append(task.Documents, doc)
	touch(task, now)
	s.unlockAndNotify(ChangeUpdate, []string{taskID})
	return doc.ID, nil
}

func (s *Store) RemoveDocument(taskID, docID string) error {
	s.mu.Lock()
	idx, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	task := &s.tasks[idx]
	kept := make([]model.Document, 0, len(task.Documents))
	for _, doc := range task.Documents {
		if doc.ID != docID {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(task.Documents) {
		s.mu.Unlock()
		return fmt.Errorf("%w: document %s", ErrAttachmentMatch, docID)
	}
	task.Documents = kept
	touch(task, s.now())
	s.unlockAndNotify(ChangeUpdate, []string{taskID})
	return nil
}
