package http

import (
	"agendaapi/src/serializers"
)

const (
	RouteItemList = "item-list"
	RouteItemTree = "item-tree"

	RouteMotionDetail     = "motion-detail"
	RouteAssignmentDetail = "assignment-detail"
)

// DefaultRoutes são as rotas da API. As de tag, usuário, moção e eleição
// pertencem a outros módulos e aparecem aqui só para montar os hyperlinks.
func DefaultRoutes() map[string]string {
	return map[string]string{
		RouteItemList:               "/rest/agenda/item/",
		RouteItemTree:               "/rest/agenda/item/tree/",
		serializers.RouteItemDetail: "/rest/agenda/item/{id}/",
		serializers.RouteTagDetail:  "/rest/core/tag/{id}/",
		serializers.RouteUserDetail: "/rest/users/user/{id}/",
		RouteMotionDetail:           "/rest/motions/motion/{id}/",
		RouteAssignmentDetail:       "/rest/assignments/assignment/{id}/",
	}
}
