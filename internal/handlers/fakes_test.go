package handlers

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
)

// world is the shared state behind the in-memory stores so joins such as a
// video's owner or a channel's subscriber count can be computed.
type world struct {
	mu            sync.Mutex
	users         []models.User
	videos        []models.Video
	comments      []models.Comment
	likes         []models.Like
	subscriptions []models.Subscription
	playlists     []models.Playlist
	tweets        []models.Tweet

	// deleteErr is returned by video deletes after the record is removed.
	deleteErr error
}

func newWorld() *world { return &world{} }

func visible(v models.Video, viewer primitive.ObjectID) bool {
	return v.IsPublished || v.Owner == viewer
}

func after(id primitive.ObjectID, cursor *primitive.ObjectID) bool {
	return cursor == nil || bytes.Compare(id[:], cursor[:]) > 0
}

func (w *world) userIndex(id primitive.ObjectID) int {
	for i, u := range w.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (w *world) profile(id primitive.ObjectID) *models.PublicProfile {
	i := w.userIndex(id)
	if i < 0 {
		return nil
	}
	u := w.users[i]
	return &models.PublicProfile{ID: u.ID, Username: u.Username, Fullname: u.Fullname, Avatar: u.Avatar.URL}
}

func (w *world) likeCount(target models.LikeTarget) int64 {
	var n int64
	for _, l := range w.likes {
		if l.Target == target {
			n++
		}
	}
	return n
}

func (w *world) videoDetails(v models.Video) models.VideoDetails {
	return models.VideoDetails{
		ID:          v.ID,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		LikesCount:  w.likeCount(models.VideoTarget(v.ID)),
		Owner:       w.profile(v.Owner),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func (w *world) videoIndex(id primitive.ObjectID) int {
	for i, v := range w.videos {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (w *world) seedUser(username, email, passwordHash string) models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Fullname:  strings.ToUpper(username[:1]) + username[1:],
		Password:  passwordHash,
		Avatar:    models.MediaAsset{URL: "https://cdn.test/avatars/" + username + ".png", StorageKey: "avatars/" + username + ".png"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	w.users = append(w.users, u)
	u.Password = ""
	return u
}

func (w *world) seedVideo(owner primitive.ObjectID, title string, published bool) models.Video {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := models.Video{
		ID:          primitive.NewObjectID(),
		VideoFile:   models.MediaAsset{URL: "https://cdn.test/videos/" + title, StorageKey: "videos/" + title},
		Thumbnail:   models.MediaAsset{URL: "https://cdn.test/thumbnails/" + title, StorageKey: "thumbnails/" + title},
		Title:       title,
		Description: title + " description",
		IsPublished: published,
		Owner:       owner,
	}
	w.videos = append(w.videos, v)
	return v
}

type fakeUsers struct{ w *world }

func (f fakeUsers) Create(_ context.Context, user *models.User) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, u := range f.w.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.WatchHistory = []primitive.ObjectID{}
	f.w.users = append(f.w.users, *user)
	return nil
}

func (f fakeUsers) find(id primitive.ObjectID, withPassword bool) (models.User, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(id)
	if i < 0 {
		return models.User{}, repositories.ErrNotFound
	}
	u := f.w.users[i]
	if !withPassword {
		u.Password = ""
	}
	return u, nil
}

func (f fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	return f.find(id, false)
}

func (f fakeUsers) FindWithPassword(_ context.Context, id primitive.ObjectID) (models.User, error) {
	return f.find(id, true)
}

func (f fakeUsers) FindByLogin(_ context.Context, login string) (models.User, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	login = strings.ToLower(login)
	for _, u := range f.w.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f fakeUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return f.w.userIndex(id) >= 0, nil
}

func (f fakeUsers) Taken(_ context.Context, username, email string) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, u := range f.w.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) UpdateAccount(_ context.Context, id primitive.ObjectID, fullname, email string) (models.User, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(id)
	if i < 0 {
		return models.User{}, repositories.ErrNotFound
	}
	for _, u := range f.w.users {
		if u.ID != id && u.Email == email {
			return models.User{}, repositories.ErrConflict
		}
	}
	f.w.users[i].Fullname = fullname
	f.w.users[i].Email = email
	u := f.w.users[i]
	u.Password = ""
	return u, nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.users[i].Password = hash
	return nil
}

func (f fakeUsers) replace(id primitive.ObjectID, set func(*models.User) models.MediaAsset) (models.User, models.MediaAsset, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(id)
	if i < 0 {
		return models.User{}, models.MediaAsset{}, repositories.ErrNotFound
	}
	previous := set(&f.w.users[i])
	u := f.w.users[i]
	u.Password = ""
	return u, previous, nil
}

func (f fakeUsers) UpdateAvatar(_ context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error) {
	return f.replace(id, func(u *models.User) models.MediaAsset {
		previous := u.Avatar
		u.Avatar = asset
		return previous
	})
}

func (f fakeUsers) UpdateCoverImage(_ context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error) {
	return f.replace(id, func(u *models.User) models.MediaAsset {
		previous := u.CoverImage
		u.CoverImage = asset
		return previous
	})
}

func (f fakeUsers) AddToWatchHistory(_ context.Context, userID, videoID primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(userID)
	if i < 0 {
		return repositories.ErrNotFound
	}
	history := []primitive.ObjectID{}
	for _, id := range f.w.users[i].WatchHistory {
		if id != videoID {
			history = append(history, id)
		}
	}
	f.w.users[i].WatchHistory = append(history, videoID)
	return nil
}

func (f fakeUsers) ChannelProfile(_ context.Context, username string, viewer *primitive.ObjectID) (models.ChannelProfile, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, u := range f.w.users {
		if u.Username != strings.ToLower(username) {
			continue
		}
		p := models.ChannelProfile{
			ID:         u.ID,
			Username:   u.Username,
			Fullname:   u.Fullname,
			Email:      u.Email,
			Avatar:     u.Avatar.URL,
			CoverImage: u.CoverImage.URL,
		}
		for _, s := range f.w.subscriptions {
			if s.Channel == u.ID {
				p.SubscribersCount++
				if viewer != nil && s.Subscriber == *viewer {
					p.IsSubscribed = true
				}
			}
			if s.Subscriber == u.ID {
				p.ChannelsSubscribedToCount++
			}
		}
		return p, nil
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (f fakeUsers) ChannelStats(_ context.Context, userID primitive.ObjectID) (models.ChannelStats, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(userID)
	if i < 0 {
		return models.ChannelStats{}, repositories.ErrNotFound
	}
	stats := models.ChannelStats{ID: userID, Username: f.w.users[i].Username, Email: f.w.users[i].Email}
	for _, s := range f.w.subscriptions {
		if s.Channel == userID {
			stats.SubscribersCount++
		}
	}
	for _, v := range f.w.videos {
		if v.Owner == userID {
			stats.VideosCount++
			stats.TotalViews += v.Views
			stats.TotalLikes += f.w.likeCount(models.VideoTarget(v.ID))
		}
	}
	return stats, nil
}

func (f fakeUsers) WatchHistory(_ context.Context, userID primitive.ObjectID) ([]models.VideoDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.userIndex(userID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	out := []models.VideoDetails{}
	history := f.w.users[i].WatchHistory
	for j := len(history) - 1; j >= 0; j-- {
		if k := f.w.videoIndex(history[j]); k >= 0 && visible(f.w.videos[k], userID) {
			out = append(out, f.w.videoDetails(f.w.videos[k]))
		}
	}
	return out, nil
}

type fakeVideos struct{ w *world }

func (f fakeVideos) Create(_ context.Context, video *models.Video) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	video.ID = primitive.NewObjectID()
	f.w.videos = append(f.w.videos, *video)
	return nil
}

func (f fakeVideos) FindByID(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return models.Video{}, repositories.ErrNotFound
	}
	return f.w.videos[i], nil
}

func (f fakeVideos) Details(_ context.Context, id primitive.ObjectID) (models.VideoDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return models.VideoDetails{}, repositories.ErrNotFound
	}
	return f.w.videoDetails(f.w.videos[i]), nil
}

func (f fakeVideos) Feed(_ context.Context, filter repositories.VideoFilter, page pagination.Request) ([]models.VideoDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.VideoDetails{}
	for _, v := range f.w.videos {
		if !v.IsPublished || !after(v.ID, page.After) {
			continue
		}
		if filter.OwnerID != nil && v.Owner != *filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(filter.Query)) {
			continue
		}
		if int64(len(out)) == page.Limit {
			break
		}
		out = append(out, f.w.videoDetails(v))
	}
	return out, nil
}

func (f fakeVideos) ChannelVideos(_ context.Context, ownerID primitive.ObjectID) ([]models.VideoDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.VideoDetails{}
	for _, v := range f.w.videos {
		if v.Owner == ownerID {
			out = append(out, f.w.videoDetails(v))
		}
	}
	return out, nil
}

func (f fakeVideos) Update(_ context.Context, id primitive.ObjectID, update repositories.VideoUpdate) (models.Video, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return models.Video{}, repositories.ErrNotFound
	}
	f.w.videos[i].Title = update.Title
	f.w.videos[i].Description = update.Description
	if update.Thumbnail != nil {
		f.w.videos[i].Thumbnail = *update.Thumbnail
	}
	return f.w.videos[i], nil
}

func (f fakeVideos) TogglePublish(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return models.Video{}, repositories.ErrNotFound
	}
	f.w.videos[i].IsPublished = !f.w.videos[i].IsPublished
	return f.w.videos[i], nil
}

func (f fakeVideos) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.videos[i].Views++
	return nil
}

func (f fakeVideos) Delete(_ context.Context, id primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.w.videoIndex(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.videos = append(f.w.videos[:i], f.w.videos[i+1:]...)
	return f.w.deleteErr
}

type fakeComments struct{ w *world }

func (f fakeComments) index(id primitive.ObjectID) int {
	for i, c := range f.w.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f fakeComments) Create(_ context.Context, comment *models.Comment) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	f.w.comments = append(f.w.comments, *comment)
	return nil
}

func (f fakeComments) FindByID(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Comment{}, repositories.ErrNotFound
	}
	return f.w.comments[i], nil
}

func (f fakeComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Comment{}, repositories.ErrNotFound
	}
	f.w.comments[i].Content = content
	return f.w.comments[i], nil
}

func (f fakeComments) Delete(_ context.Context, id primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.comments = append(f.w.comments[:i], f.w.comments[i+1:]...)
	return nil
}

func (f fakeComments) ListForVideo(_ context.Context, videoID primitive.ObjectID, page pagination.Request) ([]models.CommentDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.CommentDetails{}
	for _, c := range f.w.comments {
		if c.Video != videoID || !after(c.ID, page.After) {
			continue
		}
		if int64(len(out)) == page.Limit {
			break
		}
		out = append(out, models.CommentDetails{ID: c.ID, Content: c.Content, Video: c.Video, Owner: f.w.profile(c.Owner)})
	}
	return out, nil
}

type fakeLikes struct{ w *world }

func (f fakeLikes) Toggle(_ context.Context, target models.LikeTarget, userID primitive.ObjectID) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for i, l := range f.w.likes {
		if l.Target == target && l.LikedBy == userID {
			f.w.likes = append(f.w.likes[:i], f.w.likes[i+1:]...)
			return false, nil
		}
	}
	f.w.likes = append(f.w.likes, models.Like{ID: primitive.NewObjectID(), Target: target, LikedBy: userID, CreatedAt: time.Now()})
	return true, nil
}

func (f fakeLikes) LikedVideos(_ context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.LikedVideo{}
	for _, l := range f.w.likes {
		if l.LikedBy != userID || l.Target.Kind != models.LikeVideo {
			continue
		}
		i := f.w.videoIndex(l.Target.ID)
		if i < 0 || !visible(f.w.videos[i], userID) {
			continue
		}
		details := f.w.videoDetails(f.w.videos[i])
		out = append(out, models.LikedVideo{ID: l.ID, LikedAt: l.CreatedAt, Video: &details})
	}
	return out, nil
}

type fakeSubscriptions struct{ w *world }

func (f fakeSubscriptions) Toggle(_ context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for i, s := range f.w.subscriptions {
		if s.Subscriber == subscriber && s.Channel == channel {
			f.w.subscriptions = append(f.w.subscriptions[:i], f.w.subscriptions[i+1:]...)
			return false, nil
		}
	}
	f.w.subscriptions = append(f.w.subscriptions, models.Subscription{ID: primitive.NewObjectID(), Subscriber: subscriber, Channel: channel})
	return true, nil
}

func (f fakeSubscriptions) Subscribers(_ context.Context, channel primitive.ObjectID) ([]models.Subscriber, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.Subscriber{}
	for _, s := range f.w.subscriptions {
		if s.Channel == channel {
			out = append(out, models.Subscriber{ID: s.ID, Subscriber: f.w.profile(s.Subscriber)})
		}
	}
	return out, nil
}

func (f fakeSubscriptions) SubscribedChannels(_ context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.SubscribedChannel{}
	for _, s := range f.w.subscriptions {
		if s.Subscriber == subscriber {
			out = append(out, models.SubscribedChannel{ID: s.ID, Channel: f.w.profile(s.Channel)})
		}
	}
	return out, nil
}

type fakePlaylists struct{ w *world }

func (f fakePlaylists) index(id primitive.ObjectID) int {
	for i, p := range f.w.playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f fakePlaylists) details(p models.Playlist) models.PlaylistDetails {
	return models.PlaylistDetails{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       f.w.profile(p.Owner),
		TotalVideos: int64(len(p.Videos)),
	}
}

func (f fakePlaylists) Create(_ context.Context, playlist *models.Playlist) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, p := range f.w.playlists {
		if p.Owner == playlist.Owner && p.Name == playlist.Name {
			return repositories.ErrConflict
		}
	}
	playlist.ID = primitive.NewObjectID()
	playlist.Videos = []primitive.ObjectID{}
	f.w.playlists = append(f.w.playlists, *playlist)
	return nil
}

func (f fakePlaylists) FindByID(_ context.Context, id primitive.ObjectID) (models.Playlist, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return f.w.playlists[i], nil
}

func (f fakePlaylists) Details(_ context.Context, id, viewer primitive.ObjectID) (models.PlaylistDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.PlaylistDetails{}, repositories.ErrNotFound
	}
	p := f.w.playlists[i]
	d := f.details(p)
	for _, vid := range p.Videos {
		if k := f.w.videoIndex(vid); k >= 0 && visible(f.w.videos[k], viewer) {
			d.Videos = append(d.Videos, f.w.videoDetails(f.w.videos[k]))
		}
	}
	return d, nil
}

func (f fakePlaylists) ListForOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.PlaylistDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.PlaylistDetails{}
	for _, p := range f.w.playlists {
		if p.Owner == ownerID {
			out = append(out, f.details(p))
		}
	}
	return out, nil
}

func (f fakePlaylists) Update(_ context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Playlist{}, repositories.ErrNotFound
	}
	f.w.playlists[i].Name = name
	f.w.playlists[i].Description = description
	return f.w.playlists[i], nil
}

func (f fakePlaylists) AddVideo(_ context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Playlist{}, repositories.ErrNotFound
	}
	for _, v := range f.w.playlists[i].Videos {
		if v == videoID {
			return f.w.playlists[i], nil
		}
	}
	f.w.playlists[i].Videos = append(f.w.playlists[i].Videos, videoID)
	return f.w.playlists[i], nil
}

func (f fakePlaylists) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Playlist{}, repositories.ErrNotFound
	}
	kept := []primitive.ObjectID{}
	for _, v := range f.w.playlists[i].Videos {
		if v != videoID {
			kept = append(kept, v)
		}
	}
	f.w.playlists[i].Videos = kept
	return f.w.playlists[i], nil
}

func (f fakePlaylists) Delete(_ context.Context, id primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.playlists = append(f.w.playlists[:i], f.w.playlists[i+1:]...)
	return nil
}

type fakeTweets struct{ w *world }

func (f fakeTweets) index(id primitive.ObjectID) int {
	for i, t := range f.w.tweets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f fakeTweets) Create(_ context.Context, tweet *models.Tweet) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	tweet.ID = primitive.NewObjectID()
	f.w.tweets = append(f.w.tweets, *tweet)
	return nil
}

func (f fakeTweets) FindByID(_ context.Context, id primitive.ObjectID) (models.Tweet, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return f.w.tweets[i], nil
}

func (f fakeTweets) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (models.Tweet, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Tweet{}, repositories.ErrNotFound
	}
	f.w.tweets[i].Content = content
	return f.w.tweets[i], nil
}

func (f fakeTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	f.w.tweets = append(f.w.tweets[:i], f.w.tweets[i+1:]...)
	return nil
}

func (f fakeTweets) ListForOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.TweetDetails, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.TweetDetails{}
	for i := len(f.w.tweets) - 1; i >= 0; i-- {
		t := f.w.tweets[i]
		if t.Owner == ownerID {
			out = append(out, models.TweetDetails{
				ID:         t.ID,
				Content:    t.Content,
				Owner:      f.w.profile(t.Owner),
				LikesCount: f.w.likeCount(models.TweetTarget(t.ID)),
			})
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (models.MediaAsset, error) {
	if s.err != nil {
		return models.MediaAsset{}, s.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return models.MediaAsset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := folder + "/" + filename
	s.uploads = append(s.uploads, key)
	return models.MediaAsset{URL: "https://cdn.test/" + key, StorageKey: key}, nil
}

type fakeCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (c *fakeCleaner) Enqueue(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
	return nil
}

func (c *fakeCleaner) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
