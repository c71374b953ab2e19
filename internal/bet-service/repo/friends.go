package repo

import (
	"context"
	"database/sql"
)

// Friends implementa a lista de amizades, fonte dos convidados de uma aposta
type Friends struct{ db *sql.DB }

func NewFriends(db *sql.DB) *Friends { return &Friends{db: db} }

// List retorna os amigos do usuário com dados de exibição
func (f *Friends) List(ctx context.Context, userID string) ([]Friend, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, fs.created_at
		FROM friendships fs
		JOIN users u ON u.id = fs.friend_id
		WHERE fs.user_id = $1
		ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Friend
	for rows.Next() {
		var fr Friend
		if err := rows.Scan(&fr.UserID, &fr.Username, &fr.DisplayName, &fr.Since); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

// Add cria a amizade nos dois sentidos (simétrica por convenção)
func (f *Friends) Add(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfInvite
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		userID, friendID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		friendID, userID); err != nil {
		return err
	}

	return tx.Commit()
}
