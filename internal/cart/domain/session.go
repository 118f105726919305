package domain

import "context"

// Session 购物会话中店铺代码到购物车 uuid 的映射，每个店铺至多一个购物车
type Session interface {
	CartFor(ctx context.Context, storeCode string) (string, bool, error)
	SetCart(ctx context.Context, storeCode, cartUUID string) error
	ClearCart(ctx context.Context, storeCode string) error
}

// MapSession 内存会话，非并发安全
type MapSession map[string]string

func (s MapSession) CartFor(_ context.Context, storeCode string) (string, bool, error) {
	uuid, ok := s[storeCode]
	return uuid, ok && uuid != "", nil
}

func (s MapSession) SetCart(_ context.Context, storeCode, cartUUID string) error {
	s[storeCode] = cartUUID
	return nil
}

func (s MapSession) ClearCart(_ context.Context, storeCode string) error {
	delete(s, storeCode)
	return nil
}
